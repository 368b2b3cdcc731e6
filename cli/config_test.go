package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingDefaultIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.Workers != 0 || cfg.Scan.Cache || cfg.S3 != nil {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigExplicitMissingFails(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicitly named missing config should error")
	}
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgmeta.yaml")
	body := `scan:
  workers: 4
  cache: true
  exiftool: true
s3:
  endpoint: play.min.io
  access_key: AK
  secret_key: SK
  use_ssl: true
  bucket: photos
  prefix: albums/
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.Workers != 4 || !cfg.Scan.Cache || !cfg.Scan.Exiftool {
		t.Errorf("scan config = %+v", cfg.Scan)
	}
	if cfg.S3 == nil {
		t.Fatal("s3 block not parsed")
	}
	if cfg.S3.Endpoint != "play.min.io" || cfg.S3.Bucket != "photos" || cfg.S3.Prefix != "albums/" {
		t.Errorf("s3 config = %+v", cfg.S3)
	}
	if cfg.S3.AccessKey != "AK" || cfg.S3.SecretKey != "SK" || !cfg.S3.UseSSL {
		t.Errorf("s3 credentials = %+v", cfg.S3)
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scan: [a, b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("malformed yaml should error")
	}
}
