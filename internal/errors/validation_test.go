package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/storyloom/trpg-api/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationError() {
	ve := errors.NewValidationError()
	ve.AddFieldError("name", "is required")
	ve.AddFieldError("email", "is invalid")
	ve.AddFieldErrorf("age", "must be at least %d", 18)

	s.Assert().True(ve.HasErrors())
	s.Assert().Contains(ve.Error(), "name: is required")
	s.Assert().Contains(ve.Error(), "email: is invalid")
	s.Assert().Contains(ve.Error(), "age: must be at least 18")

	err := ve.ToError()
	s.Assert().Equal(errors.CodeInvalidArgument, err.Code)
	s.Assert().NotNil(err.Meta["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.Field("name", "is required").
		Fieldf("base_chance", "must be between %d and %d", 0, 100).
		RequiredField("game_id").
		InvalidField("area", "not a recognized area")

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	vb := errors.NewValidationBuilder()
	err := vb.Build()
	s.Assert().Nil(err)
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "test", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"valid with spaces", "  test  ", false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("field", tc.value, vb)
			err := vb.Build()
			if tc.shouldErr {
				s.Assert().NotNil(err)
			} else {
				s.Assert().Nil(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateMinLength() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMinLength("password", "short", 8, vb)
	errors.ValidateMinLength("username", "validuser", 3, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["password"][0], "must be at least 8 characters")
	s.Assert().NotContains(validationErrors, "username")
}

func (s *ValidationTestSuite) TestValidateMaxLength() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMaxLength("name", "this is a very long character name", 20, vb)
	errors.ValidateMaxLength("code", "ABC", 5, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["name"][0], "must be no more than 20 characters")
	s.Assert().NotContains(validationErrors, "code")
}

func (s *ValidationTestSuite) TestValidateRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("base_chance", 130, 0, 100, vb)
	errors.ValidateRange("cooldown_turns", 2, 0, 10, vb)
	errors.ValidateRange("hp", 0, 1, 100, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["base_chance"][0], "must be between 0 and 100")
	s.Assert().Contains(validationErrors["hp"][0], "must be between 1 and 100")
	s.Assert().NotContains(validationErrors, "cooldown_turns")
}

func (s *ValidationTestSuite) TestValidateEnum() {
	allowedSpeakers := []string{"player", "npc", "monster", "narration"}

	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("speaker_type", "system", allowedSpeakers, vb)
	errors.ValidateEnum("primary_speaker", "player", allowedSpeakers, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["speaker_type"][0], "must be one of: player, npc, monster, narration")
	s.Assert().NotContains(validationErrors, "primary_speaker")
}

func (s *ValidationTestSuite) TestComplexValidation() {
	// Simulate validating an event resolver configuration
	type ResolverInput struct {
		Area       string
		BaseChance int
		Weights    map[string]int
	}

	input := ResolverInput{
		Area:       "swamp",
		BaseChance: 130,
		Weights: map[string]int{
			"bandits":  40,
			"monsters": 40,
			"soldiers": 20,
		},
	}

	vb := errors.NewValidationBuilder()

	allowedAreas := []string{"town", "field", "dungeon"}
	errors.ValidateEnum("area", input.Area, allowedAreas, vb)
	errors.ValidateRange("base_chance", input.BaseChance, 0, 100, vb)
	for kind, weight := range input.Weights {
		errors.ValidateRange(kind, weight, 0, 100, vb)
	}

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors, "area")
	s.Assert().Contains(validationErrors, "base_chance")
	s.Assert().NotContains(validationErrors, "bandits")
}
