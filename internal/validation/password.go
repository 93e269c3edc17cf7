package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
)

// maxSimilarity is the QuickRatio at which a password counts as too close
// to an account attribute.
const maxSimilarity = .7

// PasswordSimilarity returns the highest similarity ratio between pwd and
// any of attrs. Empty attributes are ignored.
func PasswordSimilarity(pwd string, attrs ...string) float64 {
	var best float64
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio > best {
			best = ratio
		}
	}
	return best
}

func passwordRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(PasswordForm)
	if f.NewPassword == "" {
		return
	}
	local, _, _ := strings.Cut(f.Email, "@")
	if PasswordSimilarity(f.NewPassword, f.Username, f.Email, local) >= maxSimilarity {
		sl.ReportError(f.NewPassword, "new_password", "NewPassword", tagPwdSimilar, "")
	}
}
