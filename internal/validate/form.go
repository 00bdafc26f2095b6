package validate

// Field names a connection form field. Error attribution throughout the
// CLI uses these identifiers.
type Field string

// Connection form fields.
const (
	FieldServerURL    Field = "serverUrl"
	FieldToken        Field = "token"
	FieldRepository   Field = "repository"
	FieldSupportEmail Field = "supportEmail"
	// FieldNone marks an error with no actionable field; it surfaces as
	// a banner message only.
	FieldNone Field = ""
)

// Form holds the editable connection fields for a full validation pass.
type Form struct {
	ServerURL    string
	Token        string
	Repository   string
	SupportEmail string
}

// FormResult is the outcome of validating a whole form.
type FormResult struct {
	// Errors maps each failing field to its validation Kind. Fields that
	// pass are absent.
	Errors map[Field]Kind
	// HasErrors reports whether any field failed.
	HasErrors bool
}

// FormOptions controls a full-form validation pass.
type FormOptions struct {
	// SkipRepositoryCheck disables repository membership validation.
	// Used when testing a connection before any server-confirmed list
	// exists.
	SkipRepositoryCheck bool
	// KnownRepositories is the loaded repository list (nil = never
	// loaded).
	KnownRepositories []string
}

// ValidateForm runs every field validator and collects failures. A field
// holds at most one error; later checks never append to earlier ones.
func ValidateForm(f Form, opts FormOptions) FormResult {
	errs := make(map[Field]Kind)

	if kind := ServerURL(f.ServerURL); kind != KindOK {
		errs[FieldServerURL] = kind
	}

	if kind := Token(f.Token); kind != KindOK {
		errs[FieldToken] = kind
	}

	if !opts.SkipRepositoryCheck {
		if kind := Repository(f.Repository, opts.KnownRepositories); kind != KindOK {
			errs[FieldRepository] = kind
		}
	}

	if kind := Email(f.SupportEmail); kind != KindOK {
		errs[FieldSupportEmail] = kind
	}

	return FormResult{
		Errors:    errs,
		HasErrors: len(errs) > 0,
	}
}
