package lookups

import (
	"concordia-courses/apperror"
	"encoding/json"
	"strings"
)

// ReviewType tells whether a review is about a course or an instructor
type ReviewType string

// ReviewTypes
const (
	ReviewCourse     ReviewType = "course"
	ReviewInstructor ReviewType = "instructor"
)

var reviewTypes = []ReviewType{ReviewCourse, ReviewInstructor}

// ParseReviewType is case-insensitive
func ParseReviewType(s string) (ReviewType, error) {
	for _, v := range reviewTypes {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", apperror.ErrInvalidReviewType
}

// Text is the display string
func (rt ReviewType) Text() string {
	switch rt {
	case ReviewCourse:
		return "Course"
	case ReviewInstructor:
		return "Instructor"
	}
	return ""
}

// MarshalJSON writes the lower case value
func (rt ReviewType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(rt))
}

// UnmarshalJSON rejects unknown values
func (rt *ReviewType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseReviewType(s)
	if err != nil {
		return err
	}
	*rt = v
	return nil
}
