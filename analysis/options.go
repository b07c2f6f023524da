package analysis

import "fmt"

// Options controls which stages run and how the pattern stages behave.
type Options struct {
	// StripTags removes leading bracketed tags such as "[16] " from the
	// song title before it is reported.
	StripTags bool

	// MonoThreshold is the minimum run length, in steps, before a
	// same-facing sequence counts as mono. Zero disables the minimum.
	MonoThreshold int

	// CustomPatterns holds extra step sequences (L/D/U/R strings) to
	// count alongside the built-in catalog.
	CustomPatterns []string

	ComputeTechCounts    bool
	ComputePatternCounts bool
}

// DefaultOptions returns the options used when no config file is loaded.
func DefaultOptions() Options {
	return Options{
		MonoThreshold:        defaultMonoThreshold,
		ComputeTechCounts:    true,
		ComputePatternCounts: true,
	}
}

const defaultMonoThreshold = 6

// Validate reports the first invalid option value.
func (o *Options) Validate() error {
	if o.MonoThreshold < 0 {
		return fmt.Errorf("mono threshold must be >= 0, got %d", o.MonoThreshold)
	}
	for i, p := range o.CustomPatterns {
		if p == "" {
			return fmt.Errorf("custom pattern %d is empty", i)
		}
	}
	return nil
}
