package registry

import "fmt"

// ManifestUnavailableError means the manifest could not be fetched or did not
// have the expected structure. Nothing can be installed without it.
type ManifestUnavailableError struct {
	URL string
	Err error
}

func (e *ManifestUnavailableError) Error() string {
	return fmt.Sprintf("could not load installation map from %s: %v", e.URL, e.Err)
}

func (e *ManifestUnavailableError) Unwrap() error {
	return e.Err
}

// FetchError is a failed request for a single file or directory listing.
// Status is set for non-success responses, Err for transport failures.
type FetchError struct {
	Source string
	URL    string
	Status string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to download %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to download %s: %s", e.Source, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
