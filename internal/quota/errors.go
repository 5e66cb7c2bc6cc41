package quota

import "fmt"

// CredentialError means the credential file is missing or unparseable.
// The manager treats it as "no credentials", never as a fatal condition.
type CredentialError struct {
	Path string
	Err  error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credentials %s: %v", e.Path, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// RemoteError means the quota endpoint could not be reached or answered
// unusably. The manager falls back to the cache when it sees one.
type RemoteError struct {
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("quota endpoint: %v", e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
