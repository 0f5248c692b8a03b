package crud

// patterns.go collects the validation patterns shared by entity field specs
// across the application, plus the allowed page sizes for paginated tables.

import "regexp"

// PerPageOptions is the enumerated set of page sizes a table's page-size
// selector offers. SetPerPage ignores values outside this set.
var PerPageOptions = []int{1, 5, 10, 25, 50, 100}

// DefaultPerPage is the page size used before the user picks one.
const DefaultPerPage = 10

var (
	// EmailPattern accepts standard addresses, case-insensitively.
	EmailPattern = &Pattern{
		Value:   regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`),
		Message: "Invalid email address",
	}

	// PhonePattern accepts E.164 formatted numbers.
	PhonePattern = &Pattern{
		Value:   regexp.MustCompile(`^\+?[1-9]\d{1,14}$`),
		Message: "Invalid phone number",
	}

	URLPattern = &Pattern{
		Value:   regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`),
		Message: "Invalid URL",
	}

	AddressPattern = &Pattern{
		Value:   regexp.MustCompile(`^[A-Za-z0-9\s,.'-]{3,}$`),
		Message: "Invalid address",
	}

	// PostcodePattern accepts US ZIP codes, with optional +4 extension.
	PostcodePattern = &Pattern{
		Value:   regexp.MustCompile(`^\d{5}(-\d{4})?$`),
		Message: "Invalid postcode",
	}

	UUIDPattern = &Pattern{
		Value:   regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`),
		Message: "Invalid UUID",
	}

	NamePattern = &Pattern{
		Value:   regexp.MustCompile(`^[A-Za-z\s\x{00C0}-\x{017F}]{1,30}$`),
		Message: "Invalid name",
	}

	UserRolePattern = &Pattern{
		Value:   regexp.MustCompile(`^(owner|admin|member|guest)$`),
		Message: "Invalid user role. Must be `owner`, `admin`, `member` or `guest`.",
	}

	// PasswordPattern constrains the allowed character set and minimum
	// length. The letter-plus-digit requirement needs lookahead, which
	// RE2 lacks, so auth.ValidatePassword enforces it separately.
	PasswordPattern = &Pattern{
		Value:   regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`),
		Message: "Password must be at least 8 characters long and include at least one letter and one number",
	}
)

// ValidPerPage reports whether n is one of the allowed page sizes.
func ValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
