package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	appErrors "branchpoint-backend/pkg/errors"
)

var validate = validator.New()

// fieldMessages maps struct field names to the client-facing message used
// when validation of that field fails. Fields without an entry fall back to
// a generated message.
var fieldMessages = map[string]string{
	"Name":           "Branch name is required",
	"BranchID":       "Branch ID is required",
	"FinalBranchID":  "Final branch ID is required",
	"PostConfidence": "Post-confidence must be between 1 and 5",
	"PreConfidence":  "Pre-confidence must be between 1 and 5",
	"DecisionIDs":    "At least 2 decisions are required to create a group",
	"GroupName":      "Group name is required",
	"DecisionTitle":  "Decision title is required",
	"PersonaStyle":   "Persona style must be analytical or empathetic",
	"UserResponses":  "Decision title and user responses are required",
	"OriginalDecision": "Original decision is required",
	"ChosenPath":       "Chosen path is required",
	"PathDescription":  "Path description is required",
	"BroadCategory":    "Broad category is required",
}

// Validate checks a request struct against its validate tags and converts
// the first failure into a ValidationError with a client-facing message.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := fieldMessages[fe.StructField()]; ok {
			return appErrors.NewValidation(msg)
		}
		return appErrors.NewValidation(fmt.Sprintf("%s failed %s validation", fe.StructField(), fe.Tag()))
	}

	return appErrors.NewValidation(err.Error())
}
