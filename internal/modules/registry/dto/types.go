package dto

type ProcessorInfo struct {
	Name       string
	Version    string
	Source     string
	Enabled    bool
	Binary     string
	ThreadType string
	Bulk       bool
}

type DoctorResult struct {
	Name            string
	ManifestValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type ProcessorDetail struct {
	Name                 string
	Version              string
	Source               string
	Accepts              map[string][]string
	Bulk                 bool
	ExpandDirectory      bool
	ThreadType           string
	Dependencies         []string
	OptionalDependencies []string
	OptionNames          []string
}
