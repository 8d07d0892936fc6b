package dto

type DependencyStatus struct {
	Name    string
	State   string
	Version string
	Error   string
}
