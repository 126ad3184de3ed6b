package assemble

import (
	"crypto"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/sassoftware/go-rpmutils"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

// SignRPM signs the built package in place with the armored GPG key at
// keyPath. The key must carry a usable private key.
func SignRPM(rpmPath, keyPath string) error {
	log := logger.Logger()

	keyFile, err := os.Open(keyPath)
	if err != nil {
		return fmt.Errorf("%w: opening signing key %s: %v", ErrPackageBuildFailed, keyPath, err)
	}
	defer keyFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		return fmt.Errorf("%w: parsing signing key: %v", ErrPackageBuildFailed, err)
	}
	if len(keyring) == 0 || keyring[0].PrivateKey == nil {
		return fmt.Errorf("%w: %s contains no private key", ErrPackageBuildFailed, keyPath)
	}

	in, err := os.Open(rpmPath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrPackageBuildFailed, rpmPath, err)
	}
	defer in.Close()

	opts := &rpmutils.SignatureOptions{Hash: crypto.SHA256}
	signed := rpmPath + ".signed"
	if _, err := rpmutils.SignRpmFile(in, signed, keyring[0].PrivateKey, opts); err != nil {
		return fmt.Errorf("%w: signing %s: %v", ErrPackageBuildFailed, rpmPath, err)
	}

	if err := os.Rename(signed, rpmPath); err != nil {
		return fmt.Errorf("%w: replacing %s with signed package: %v", ErrPackageBuildFailed, rpmPath, err)
	}

	log.Infof("Signed %s", rpmPath)
	return nil
}
