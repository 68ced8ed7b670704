package ops

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSaveDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "saves")
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir parent %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

func TestBackupRestoreSaves_RoundTrip(t *testing.T) {
	files := map[string]string{
		"cgt_miner_arcade_save.json": `{"cgt":1234.5,"prestige_seeds":3,"upgrades":{"click_power":7}}`,
		"backups/manifest.json":      `{"last_backup":"2026-02-28"}`,
	}
	src := writeSaveDir(t, files)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupSaves(src, archive); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	restoreDir := filepath.Join(t.TempDir(), "restore")
	if err := RestoreSaves(archive, restoreDir); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	got := map[string]string{}
	err := filepath.WalkDir(restoreDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(restoreDir, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk restore dir: %v", err)
	}

	if !reflect.DeepEqual(files, got) {
		t.Fatalf("restored files mismatch:\nwant=%v\ngot=%v", files, got)
	}
}

func TestVerifySaveArchive(t *testing.T) {
	src := writeSaveDir(t, map[string]string{
		"cgt_miner_arcade_save.json": `{"cgt":10}`,
	})
	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupSaves(src, archive); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	n, err := VerifySaveArchive(archive)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 verified save, got %d", n)
	}
}

func TestVerifySaveArchive_RejectsCorruptSave(t *testing.T) {
	src := writeSaveDir(t, map[string]string{
		"cgt_miner_arcade_save.json": `{broken`,
	})
	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupSaves(src, archive); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	if _, err := VerifySaveArchive(archive); err == nil {
		t.Fatalf("expected verify to reject corrupt save")
	}
}

func TestRestoreSaves_RejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.tar.gz")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "../escape.txt",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len("bad")),
	}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := tw.Write([]byte("bad")); err != nil {
		t.Fatalf("write body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if err := RestoreSaves(archive, filepath.Join(t.TempDir(), "out")); err == nil {
		t.Fatalf("expected restore to reject path traversal archive")
	}
}
