package flywheel

import "errors"

var (
	// ErrNotConfigured means no API key was supplied at all.
	ErrNotConfigured = errors.New("Flywheel not configured. Set FW_API_KEY in .env file")

	// ErrBadCredentialFormat means the key is present but not 'host:token'.
	ErrBadCredentialFormat = errors.New("FW_API_KEY must be 'host:token' (e.g., upenn.flywheel.io:abcd...)")

	// ErrConnection means the remote rejected the credential or was
	// unreachable.
	ErrConnection = errors.New("failed to connect to Flywheel")

	// ErrNotFound means the requested container does not exist remotely.
	ErrNotFound = errors.New("not found on Flywheel")

	// ErrAccessDenied means the remote refused the operation. The message
	// attached by callers explains the read-only-key case.
	ErrAccessDenied = errors.New("access denied by Flywheel")

	// ErrAllDownloadsFailed means a download batch had requests but zero
	// successes.
	ErrAllDownloadsFailed = errors.New("all downloads failed. Your API key may have read-only access. Contact your Flywheel admin to request download permissions")
)
