package export

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// RawDocument is the top-level raw series document.
type RawDocument struct {
	UserData []RawRecord `json:"user_data"`
}

// RawRecord is one reading in the raw document.
type RawRecord struct {
	UserID          string `json:"user_id"`
	HeartRate       int    `json:"heart_rate"`
	Timestamp       int64  `json:"timestamp"`
	RespiratoryRate int    `json:"respiratory_rate"`
	Activity        int    `json:"activity"`
}

// NewRawDocument converts a series into its document form.
func NewRawDocument(series *types.RawSeries) RawDocument {
	doc := RawDocument{UserData: []RawRecord{}}
	if series == nil {
		return doc
	}

	doc.UserData = make([]RawRecord, len(series.Readings))
	for i, r := range series.Readings {
		doc.UserData[i] = RawRecord{
			UserID:          r.Identity,
			HeartRate:       r.HeartRate,
			Timestamp:       r.Timestamp,
			RespiratoryRate: r.RespiratoryRate,
			Activity:        r.Activity,
		}
	}
	return doc
}

// Series converts the document back into a series.
func (d RawDocument) Series() *types.RawSeries {
	series := types.NewRawSeries(len(d.UserData))
	for _, rec := range d.UserData {
		series.Add(types.Reading{
			Identity:        rec.UserID,
			HeartRate:       rec.HeartRate,
			Timestamp:       rec.Timestamp,
			RespiratoryRate: rec.RespiratoryRate,
			Activity:        rec.Activity,
		})
	}
	return series
}

// EncodeRawJSON writes the raw document to w, indented by indent spaces.
// An indent of zero writes compact JSON.
func EncodeRawJSON(w io.Writer, series *types.RawSeries, indent int) error {
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	return enc.Encode(NewRawDocument(series))
}

// WriteRawJSON writes the raw document to path.
func WriteRawJSON(path string, series *types.RawSeries, indent int) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := EncodeRawJSON(bw, series, indent); err != nil {
		f.Close()
		return errors.NewIOFailure("encode", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.NewIOFailure("write", path, err)
	}

	return errors.NewIOFailure("close", path, f.Close())
}

// ReadRawJSON reads a raw document written by WriteRawJSON.
func ReadRawJSON(path string) (*types.RawSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOFailure("open", path, err)
	}
	defer f.Close()

	var doc RawDocument
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&doc); err != nil {
		return nil, errors.NewMalformedRecord(path, 0, err.Error())
	}

	return doc.Series(), nil
}
