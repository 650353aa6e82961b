package domain

// Validator is the slice of go-playground/validator the models use, kept
// as an interface so model code stays free of the library import.
type Validator interface {
	Struct(s interface{}) error
	Var(field interface{}, tag string) error
}
