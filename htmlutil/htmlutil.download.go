package htmlutil

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-cuserr"
)

// Transfer encodings reported for downloads
const (
	EncodingASCII  = "Ascii"
	EncodingBinary = "Binary"
)

type downloadType struct {
	contentType string
	encoding    string
}

var downloadTypes = map[string]downloadType{
	"csv":  {"text/csv", EncodingASCII},
	"doc":  {"application/msword", EncodingBinary},
	"html": {"text/html", EncodingASCII},
	"json": {"application/json", EncodingASCII},
	"pdf":  {"application/pdf", EncodingBinary},
	"xls":  {"application/vnd.ms-excel", EncodingBinary},
}

var defaultDownloadType = downloadType{"application/octet-stream", EncodingBinary}

// Download streams filename to w as an attachment.
// A missing file returns a not-found error and writes nothing.
func Download(w http.ResponseWriter, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cuserr.NewNotFoundError(MetaKeyFile, ErrMsgFileNotFound).
				WithMetadata(MetaKeyFile, filename)
		}
		return cuserr.WrapStdError(err, ErrCodeDownload, ErrMsgFileOpen).
			WithMetadata(MetaKeyFile, filename)
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	dt, ok := downloadTypes[ext]
	if !ok {
		dt = defaultDownloadType
	}

	h := w.Header()
	h.Set(HeaderContentDisp, `attachment; filename="`+filepath.Base(filename)+`"`)
	h.Set(HeaderContentDesc, ContentDescription)
	h.Set(HeaderContentType, dt.contentType)
	h.Set(HeaderTransferEncode, dt.encoding)

	if _, err := io.Copy(w, f); err != nil {
		return cuserr.WrapStdError(err, ErrCodeDownload, ErrMsgFileSend).
			WithMetadata(MetaKeyFile, filename)
	}
	return nil
}
