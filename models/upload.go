package models

import (
	"concordia-courses/apperror"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validator (tags) => https://github.com/go-playground/validator
var validate = validator.New()

// UploadError tells which row of a bulk file is broken
type UploadError struct {
	Row int
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ValidateReview checks a review before it's saved (author must be set)
func ValidateReview(r *Review) error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: %s", apperror.ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// ParseUpload reads a bulk file (JSON array of reviews) and validates every row
func ParseUpload(r io.Reader) ([]Review, error) {

	var reviews []Review
	if err := json.NewDecoder(r).Decode(&reviews); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrInvalidRequest, err)
	}

	for i := range reviews {
		reviews[i].Normalize()
		if err := ValidateReview(&reviews[i]); err != nil {
			return nil, &UploadError{Row: i, Err: err}
		}
	}

	return reviews, nil
}
