package s3transport

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// Scheme — схема адресов бакетов.
const Scheme = "s3"

// Target — бакет и префикс, под которым лежат передачи.
type Target struct {
	Bucket string
	Prefix string
}

// ParseTarget разбирает адрес вида s3://bucket/prefix.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, models.NewValidationError("target", raw, err.Error())
	}
	if u.Scheme != Scheme {
		return Target{}, models.NewValidationError("target", raw, "scheme must be s3")
	}
	if u.Host == "" {
		return Target{}, models.NewValidationError("target", raw, "bucket is empty")
	}

	return Target{
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// IsTarget сообщает, указывает ли адрес на бакет.
func IsTarget(raw string) bool {
	return strings.HasPrefix(raw, Scheme+"://")
}

func (t Target) String() string {
	if t.Prefix == "" {
		return fmt.Sprintf("%s://%s", Scheme, t.Bucket)
	}
	return fmt.Sprintf("%s://%s/%s", Scheme, t.Bucket, t.Prefix)
}

func (t Target) transferKey(transferID string) string {
	if t.Prefix == "" {
		return transferID
	}
	return t.Prefix + "/" + transferID
}

func (t Target) chunkKey(transferID string, idx int) string {
	return fmt.Sprintf("%s/chunk-%06d", t.transferKey(transferID), idx)
}

func (t Target) metaKey(transferID string) string {
	return t.transferKey(transferID) + "/meta.json"
}
