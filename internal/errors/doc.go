// Package errors provides a comprehensive error handling solution for the trpg-api project.
//
// This package is inspired by the goaterr pattern and provides:
//   - Structured errors with codes, messages, and metadata
//   - User-friendly error messages
//   - Error context preservation through wrapping
//   - Validation error helpers
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("game session not found")
//	err := errors.InvalidArgumentf("invalid hp delta: %d", delta)
//
// Adding metadata:
//
//	err := errors.NotFound("game session not found").
//	    WithMeta("game_id", gameID).
//	    WithMeta("owner_id", ownerID)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to load session")
//	}
//
// Changing error semantics:
//
//	if err := client.Get(ctx, key).Err(); err != nil {
//	    if err == redis.Nil {
//	        return errors.WrapWithCode(err, errors.CodeNotFound, "session not found")
//	    }
//	    return errors.Wrap(err, "redis error")
//	}
//
// # Error Checking
//
// Type checking:
//
//	if errors.IsNotFound(err) {
//	    // Handle not found case
//	}
//
// Extracting information:
//
//	code := errors.GetCode(err)
//	message := errors.GetMessage(err)
//	meta := errors.GetMeta(err)
//
// # Validation Errors
//
// Using the validation builder:
//
//	vb := errors.NewValidationBuilder()
//	if c.SessionRepo == nil {
//	    vb.RequiredField("SessionRepo")
//	}
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Layer-Specific Guidelines
//
// Repository layer:
//   - Return domain-specific errors (NotFound, Aborted on version conflicts)
//   - Include relevant IDs in metadata
//   - Wrap storage errors with context
//
// Orchestrator layer:
//   - Validate inputs and return InvalidArgument errors
//   - Surface upstream failures as Unavailable
//   - Wrap repository errors with business context
//
// # Error Codes
//
// The codes most relevant to turn processing:
//   - NotFound: Session does not exist for (game_id, owner_id)
//   - Aborted: Optimistic version check failed on commit
//   - Unavailable: Narrative generator unreachable or timed out
//   - InvalidArgument: Invalid input or mutation target
package errors
