// Package apkmeta extracts the app version and app hash twintail needs to
// impersonate a real client build, by reading them out of an APK (or XAPK,
// which nests a real APK as one of its own zip entries).
package apkmeta

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sergeii/twintail/internal/sekai"
	"github.com/sergeii/twintail/internal/twerrors"
)

// hashPattern matches a resource string combining a three-part version
// number and a UUID-shaped app hash, as embedded in the game's resources.
var hashPattern = regexp.MustCompile(`(\d+\.\d+\.\d+).+([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

// candidateSuffix narrows which zip entries are worth scanning for the
// version/hash pattern, out of the thousands an APK typically contains.
const candidateSuffix = "6350e2ec327334c8a9b7f494f344a761"

// Extract reads version/app-hash metadata out of an APK or XAPK file.
func Extract(path string) (sekai.AppInfo, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return sekai.AppInfo{}, twerrors.New(twerrors.KindIO, "apkmeta.Extract", err)
	}
	defer r.Close()

	if strings.HasSuffix(strings.ToLower(path), ".xapk") {
		return extractFromXAPK(&r.Reader)
	}
	return extractFromAPK(&r.Reader)
}

func extractFromXAPK(r *zip.Reader) (sekai.AppInfo, error) {
	for _, f := range r.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".apk") {
			continue
		}
		inner, err := readZipEntry(f)
		if err != nil {
			return sekai.AppInfo{}, err
		}
		innerReader, err := zip.NewReader(strings.NewReader(string(inner)), int64(len(inner)))
		if err != nil {
			continue
		}
		info, err := extractFromAPK(innerReader)
		if err == nil {
			return info, nil
		}
	}
	return sekai.AppInfo{}, twerrors.New(twerrors.KindCodec, "apkmeta.extractFromXAPK",
		fmt.Errorf("no inner apk yielded version/hash metadata"))
}

func extractFromAPK(r *zip.Reader) (sekai.AppInfo, error) {
	for _, f := range r.File {
		if !strings.Contains(f.Name, candidateSuffix) {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			continue
		}
		if m := hashPattern.FindSubmatch(data); m != nil {
			return sekai.AppInfo{AppVersion: string(m[1]), AppHash: string(m[2])}, nil
		}
	}
	return sekai.AppInfo{}, twerrors.New(twerrors.KindCodec, "apkmeta.extractFromAPK",
		fmt.Errorf("no candidate resource matched the version/hash pattern"))
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, twerrors.New(twerrors.KindIO, "apkmeta.readZipEntry", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, twerrors.New(twerrors.KindIO, "apkmeta.readZipEntry", err)
	}
	return data, nil
}
