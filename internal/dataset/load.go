package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DetectDelimiter picks comma or tab by whichever occurs more often in the
// raw content. Ties go to comma.
func DetectDelimiter(b []byte) rune {
	if bytes.Count(b, []byte{'\t'}) > bytes.Count(b, []byte{','}) {
		return '\t'
	}
	return ','
}

// FromReader parses CSV/TSV content into a Dataset. The first row is the
// header; the delimiter is sniffed from the content.
func FromReader(name string, r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	sep := DetectDelimiter(raw)

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithDelimiter(sep),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		// A header with no data rows is still a valid, zero-row dataset.
		if bytes.IndexByte(raw, '\n') == -1 {
			return headerOnly(name, raw, sep)
		}
		return nil, fmt.Errorf("parse table: %w", df.Error())
	}
	return &Dataset{Name: name, DF: df, Schema: inferSchema(df)}, nil
}

func headerOnly(name string, header []byte, sep rune) (*Dataset, error) {
	var ss []series.Series
	for _, c := range strings.Split(string(header), string(sep)) {
		ss = append(ss, series.New([]string{}, series.String, strings.TrimSpace(c)))
	}
	df := dataframe.New(ss...)
	if df.Error() != nil {
		return nil, fmt.Errorf("parse header: %w", df.Error())
	}
	return &Dataset{Name: name, DF: df, Schema: inferSchema(df)}, nil
}

// FromURL fetches a CSV/TSV resource and parses it. The dataset name is
// taken from the last URL path segment.
func FromURL(ctx context.Context, client *http.Client, rawURL string) (*Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	name := path.Base(req.URL.Path)
	if name == "" || name == "." || name == "/" {
		name = "remote.csv"
	}
	return FromReader(name, resp.Body)
}
