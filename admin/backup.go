package admin

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/sha3"
)

// DigestSuffix names the sidecar holding the hex SHA3-256 of a backup file.
const DigestSuffix = ".sha3"

// ErrDigestMismatch means a backup does not match its recorded digest.
var ErrDigestMismatch = errors.New("backup digest mismatch")

// BackupResult describes a written backup.
type BackupResult struct {
	Path   string
	Digest string
	Size   int64
}

// Backup streams a full badger backup, zstd-compressed, into a new file
// under dir and records the digest of the compressed bytes beside it.
func Backup(db *badger.DB, dir string, now time.Time) (BackupResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BackupResult{}, fmt.Errorf("create backup directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("backup_%d.db.zst", now.UnixNano()))

	return writeBackup(path, func(w io.Writer) error {
		if _, err := db.Backup(w, 0); err != nil {
			return fmt.Errorf("badger backup: %w", err)
		}
		return nil
	})
}

// writeBackup compresses what dump writes into a new file at path and
// writes the digest sidecar. On failure no file is left behind.
func writeBackup(path string, dump func(io.Writer) error) (res BackupResult, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return BackupResult{}, err
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(path)
			os.Remove(path + DigestSuffix)
		}
	}()

	hasher := sha3.New256()
	enc, err := zstd.NewWriter(io.MultiWriter(f, hasher), zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return BackupResult{}, err
	}
	if err := dump(enc); err != nil {
		enc.Close()
		return BackupResult{}, err
	}
	if err := enc.Close(); err != nil {
		return BackupResult{}, fmt.Errorf("finish compression: %w", err)
	}
	if err := f.Sync(); err != nil {
		return BackupResult{}, err
	}

	fi, err := f.Stat()
	if err != nil {
		return BackupResult{}, err
	}
	digest := hex.EncodeToString(hasher.Sum(nil))
	if err := os.WriteFile(path+DigestSuffix, []byte(digest+"\n"), 0o644); err != nil {
		return BackupResult{}, fmt.Errorf("write digest: %w", err)
	}
	return BackupResult{Path: path, Digest: digest, Size: fi.Size()}, nil
}

// VerifyBackup checks path against its digest sidecar.
func VerifyBackup(path string) error {
	want, err := os.ReadFile(path + DigestSuffix)
	if err != nil {
		return fmt.Errorf("read digest: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	hasher := sha3.New256()
	if _, err := io.Copy(hasher, f); err != nil {
		return err
	}
	got := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(strings.TrimSpace(string(want)), got) {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrDigestMismatch)
	}
	return nil
}

// Restore verifies the backup at path and loads it into db.
func Restore(db *badger.DB, path string) (err error) {
	if err := VerifyBackup(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	return db.Load(dec, 256)
}
