package ide

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// productInfo is the metadata file JetBrains ships inside every
// install directory.
type productInfo struct {
	Version     string `json:"version"`
	BuildNumber string `json:"buildNumber"`
	ProductCode string `json:"productCode"`
}

// readInstallVersion extracts a displayable version from an install
// directory: product-info.json first (including the macOS bundle
// location), then the older build.txt. Returns "" when neither is
// readable.
func readInstallVersion(dir string) string {
	for _, rel := range []string{
		"product-info.json",
		filepath.Join("Contents", "Resources", "product-info.json"),
	} {
		if v := readProductInfo(filepath.Join(dir, rel)); v != "" {
			return v
		}
	}

	for _, rel := range []string{
		"build.txt",
		filepath.Join("Resources", "build.txt"),
	} {
		if v := readBuildTxt(filepath.Join(dir, rel)); v != "" {
			return v
		}
	}

	return ""
}

func readProductInfo(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var info productInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ""
	}

	if info.Version != "" {
		return info.Version
	}
	return info.BuildNumber
}

// readBuildTxt parses the legacy build file, which holds a single
// line like "IU-231.8109.175". The product-code prefix is dropped.
func readBuildTxt(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	build := strings.TrimSpace(string(data))
	if i := strings.IndexByte(build, '-'); i > 0 {
		build = build[i+1:]
	}
	return build
}
