package schema

import (
	"errors"

	"github.com/xeipuuv/gojsonschema"

	"lendflow-backend/internal/domain/apperr"
)

// Validator wraps gojsonschema behind the two operations the domain needs:
// accepting a schema document at loan-type write time and validating
// application metadata at apply time.
type Validator struct{}

func New() *Validator { return &Validator{} }

// Compile rejects structurally invalid schema documents.
func (v *Validator) Compile(schemaDoc []byte) error {
	if len(schemaDoc) == 0 {
		return nil
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaDoc))
	if err != nil {
		return errors.New("invalid schema document: " + err.Error())
	}
	return nil
}

// Validate checks instance against schemaDoc and returns field-level errors.
func (v *Validator) Validate(schemaDoc, instance []byte) ([]apperr.FieldError, error) {
	if len(schemaDoc) == 0 {
		return nil, nil
	}
	if len(instance) == 0 {
		instance = []byte(`{}`)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDoc),
		gojsonschema.NewBytesLoader(instance),
	)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	out := make([]apperr.FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, apperr.FieldError{Field: e.Field(), Message: e.Description()})
	}
	return out, nil
}
