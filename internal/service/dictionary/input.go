package dictionary

import (
	"strconv"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/transfer"
)

// validateVersion checks the shape of a transfer object before translation.
// Codes are checked by the translators against the lookup tables.
func validateVersion(in *transfer.EntryVersion, maxSenses int) error {
	if in == nil {
		return domain.NewValidationError("entry", "required")
	}

	var errs []domain.FieldError

	if domain.NormalizeText(in.Text) == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	} else if len(in.Text) > 500 {
		errs = append(errs, domain.FieldError{Field: "text", Message: "too long (max 500)"})
	}

	if in.Notes != nil && len(*in.Notes) > 5000 {
		errs = append(errs, domain.FieldError{Field: "notes", Message: "too long (max 5000)"})
	}

	if len(in.Senses) > maxSenses {
		errs = append(errs, domain.FieldError{
			Field:   "senses",
			Message: "too many (max " + strconv.Itoa(maxSenses) + ")",
		})
	}

	for si, sense := range in.Senses {
		if sense == nil {
			errs = append(errs, domain.FieldError{Field: fieldIdx("senses", si, ""), Message: "required"})
			continue
		}
		if sense.Definition != nil && len(*sense.Definition) > 2000 {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("senses", si, "definition"),
				Message: "too long (max 2000)",
			})
		}
		for ti, tr := range sense.Translations {
			if tr == nil || tr.Text == "" {
				errs = append(errs, domain.FieldError{
					Field:   fieldIndex2("senses", si, "translations", ti),
					Message: "text required",
				})
			}
		}
		for ei, ex := range sense.Examples {
			if ex == nil || ex.Sentence == "" {
				errs = append(errs, domain.FieldError{
					Field:   fieldIndex2("senses", si, "examples", ei),
					Message: "sentence required",
				})
			}
		}
	}

	for pi, p := range in.Pronunciations {
		if p == nil || p.Transcription == "" {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("pronunciations", pi, "transcription"),
				Message: "required",
			})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ImportInput holds the entries of one import file.
type ImportInput struct {
	Items []*transfer.EntryVersion
}

// Validate checks the batch size; items are validated one by one.
func (i *ImportInput) Validate(maxItems int) error {
	if len(i.Items) == 0 {
		return domain.NewValidationError("items", "at least one item required")
	}
	if len(i.Items) > maxItems {
		return domain.NewValidationError("items", "too many (max "+strconv.Itoa(maxItems)+")")
	}
	return nil
}

// fieldIndex2 formats a deeply nested field path like "senses[0].translations[1]".
func fieldIndex2(parent string, idx int, child string, childIdx int) string {
	return parent + "[" + strconv.Itoa(idx) + "]." + child + "[" + strconv.Itoa(childIdx) + "]"
}

// fieldIdx formats a nested field path like "items[0].text".
func fieldIdx(parent string, idx int, field string) string {
	p := parent + "[" + strconv.Itoa(idx) + "]"
	if field == "" {
		return p
	}
	return p + "." + field
}
