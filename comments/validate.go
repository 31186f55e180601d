package comments

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxContentLength is the longest comment the server accepts
const MaxContentLength = 1000

var validate = validator.New()

// ValidateContent checks a comment body before it is sent
func ValidateContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if err := validate.Var(trimmed, fmt.Sprintf("required,max=%d", MaxContentLength)); err != nil {
		if len(trimmed) == 0 {
			return fmt.Errorf("comment is empty")
		}
		return fmt.Errorf("comment too long (max %d characters)", MaxContentLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return fmt.Errorf("comment contains non-printable characters")
		}
	}
	return nil
}
