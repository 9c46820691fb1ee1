package lookups

import (
	"concordia-courses/apperror"
	"encoding/json"
	"strings"
)

// InstructorTag is a label attached to an instructor review.
// The value is the display string, which is also what gets stored.
type InstructorTag string

var instructorTags = []InstructorTag{
	"Tough Grader",
	"Get Ready To Read",
	"Participation Matters",
	"Extra Credit",
	"Group Projects",
	"Amazing Lectures",
	"Clear Grading Criteria",
	"Gives Good Feedback",
	"Inspirational",
	"Lots Of Homework",
	"Hilarious",
	"Beware Of Pop Quizzes",
	"So Many Papers",
	"Caring",
	"Respected",
	"Flexible Deadlines",
	"Lecture Heavy",
	"Test Heavy",
	"Graded By Few Things",
	"Accessible Outside Class",
	"Online Savvy",
	"Engaging",
	"Technically Proficient",
	"Industry Experienced",
	"Research-Oriented",
	"Multidisciplinary Approach",
	"Interactive Sessions",
	"Encourages Critical Thinking",
	"Uses Multimedia",
	"Culturally Inclusive",
}

// InstructorTags returns a copy of the vocabulary
func InstructorTags() []InstructorTag {
	res := make([]InstructorTag, len(instructorTags))
	copy(res, instructorTags)
	return res
}

// ParseInstructorTag is case-insensitive and returns the canonical spelling
func ParseInstructorTag(s string) (InstructorTag, error) {
	for _, v := range instructorTags {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", apperror.ErrInvalidTag
}

func (t InstructorTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *InstructorTag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseInstructorTag(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
