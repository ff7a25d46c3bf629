package model

// Command is a saved shell command addressed by its alias.
type Command struct {
	ID      int64  `yaml:"-"`
	Command string `yaml:"command"`
	Alias   string `yaml:"alias"`
	Info    string `yaml:"info,omitempty"`
	Service string `yaml:"service"`
}
