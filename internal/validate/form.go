// internal/validate/form.go
//
// GadgetCloud Forms – whole-submission validation.
//
// Context
//   A submission's data map is checked against the required-field list for
//   its form type and the global constraint table.  All failures are
//   collected, not just the first, so one response can report every problem.
//   The constraint table is a whitelist of rules, not of allowed keys:
//   fields with no matching constraint and no required entry pass untouched.
//
//------------------------------------------------------------------------------

package validate

// ValidateFormData validates formData against requiredFields and the
// constraint table.  The returned slice is empty on success.
func ValidateFormData(
	formData map[string]any,
	requiredFields []string,
	constraints map[string]FieldConstraint,
) []Failure {
	var failures []Failure

	required := make(map[string]bool, len(requiredFields))
	for _, name := range requiredFields {
		required[name] = true

		value, present := formData[name]
		if !present {
			failures = append(failures, Failure{
				Field:   name,
				Reason:  MissingRequired,
				Message: "Missing required field: " + name,
			})
			continue
		}

		if c, ok := constraints[name]; ok {
			if f := ValidateField(name, value, c); f != nil {
				failures = append(failures, *f)
			}
		}
	}

	// Optional fields are still constrained when a rule exists.
	for name, value := range formData {
		if required[name] {
			continue
		}
		if c, ok := constraints[name]; ok {
			if f := ValidateField(name, value, c); f != nil {
				failures = append(failures, *f)
			}
		}
	}

	return failures
}
