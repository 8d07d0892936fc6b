package service

import (
	"context"
	"fmt"
	"os/exec"

	"dropkit/internal/modules/deps/domain"
)

// PathBinaryLoader is the host's default loader for manifest-declared
// dependency names: locate the binary on PATH and supply its path as
// the payload. Absence reports ErrMissing so a registered installer can
// take over.
func PathBinaryLoader(binary string) domain.Loader {
	return func(_ context.Context, _ domain.InstallUtils) (domain.Payload, error) {
		path, err := exec.LookPath(binary)
		if err != nil {
			return domain.Payload{}, fmt.Errorf("%w: %s not on PATH", domain.ErrMissing, binary)
		}
		return domain.Payload{Value: path}, nil
	}
}

// PathBinaryRegistration wraps PathBinaryLoader into a registration for
// a dependency that is just a binary of the same name.
func PathBinaryRegistration(name string) domain.Registration {
	return domain.Registration{Name: name, Load: PathBinaryLoader(name)}
}
