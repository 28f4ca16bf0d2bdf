package domain

import dErrors "carbonledger/pkg/domain-errors"

// DataQuality tags how an activity quantity was obtained. It qualifies the
// audit trail; it never changes the arithmetic.
type DataQuality string

const (
	DataQualityMeasured  DataQuality = "measured"
	DataQualityEstimated DataQuality = "estimated"
	DataQualityDefault   DataQuality = "default"
)

var validDataQualities = map[DataQuality]bool{
	DataQualityMeasured:  true,
	DataQualityEstimated: true,
	DataQualityDefault:   true,
}

// ParseDataQuality constructs a DataQuality from external input. An empty
// value defaults to measured, matching the persisted column default.
func ParseDataQuality(s string) (DataQuality, error) {
	if s == "" {
		return DataQualityMeasured, nil
	}
	q := DataQuality(s)
	if !validDataQualities[q] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported data quality %q", s)
	}
	return q, nil
}

// IsValid checks if the data quality is one of the supported tags.
func (q DataQuality) IsValid() bool {
	return validDataQualities[q]
}

// String returns the string representation of the tag.
func (q DataQuality) String() string {
	return string(q)
}
