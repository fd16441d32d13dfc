package zcta

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/config"
)

// archiveName is the national ZCTA boundary file on the Census TIGER FTP
// server under cfg.FTPPath.
const archiveName = "tl_2024_us_zcta520.zip"

// Download fetches the ZCTA boundary archive over FTP and extracts it.
// Returns the path to the extracted .shp file. An archive already on disk
// is reused.
func Download(ctx context.Context, cfg config.ZCTAConfig) (string, error) {
	log := zap.L().With(
		zap.String("component", "zcta.download"),
		zap.String("host", cfg.FTPHost),
	)

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", eris.Wrap(err, "zcta: create dest dir")
	}

	zipPath := filepath.Join(cfg.Dir, archiveName)
	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		log.Debug("archive already exists, skipping download", zap.String("path", zipPath))
	} else {
		log.Info("downloading ZCTA boundaries", zap.String("path", cfg.FTPPath))
		if err := downloadFTP(ctx, cfg.FTPHost, path.Join(cfg.FTPPath, archiveName), zipPath); err != nil {
			return "", err
		}
	}

	extractDir := filepath.Join(cfg.Dir, strings.TrimSuffix(archiveName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "zcta: create extract dir")
	}
	if err := extractZIP(zipPath, extractDir); err != nil {
		return "", err
	}

	return findFileByExt(extractDir, ".shp")
}

// downloadFTP retrieves one file from an anonymous FTP server.
func downloadFTP(ctx context.Context, host, remotePath, dest string) error {
	conn, err := ftp.Dial(host, ftp.DialWithTimeout(30*time.Second), ftp.DialWithContext(ctx))
	if err != nil {
		return eris.Wrap(err, "zcta: ftp dial")
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		return eris.Wrap(err, "zcta: ftp login")
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		return eris.Wrapf(err, "zcta: ftp retrieve %s", remotePath)
	}
	defer resp.Close() //nolint:errcheck

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "zcta: create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp); err != nil {
		return eris.Wrap(err, "zcta: write file")
	}
	return nil
}

// extractZIP extracts a ZIP archive to the destination directory, flattening
// any internal paths.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "zcta: open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "zcta: open zip entry %s", f.Name)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "zcta: create %s", destPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "zcta: extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}
	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "zcta: read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("zcta: no %s file found in %s", ext, dir)
}
