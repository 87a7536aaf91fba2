package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// Bookkeeping fields are never part of the digest: they change on every ETL
// pass without the record itself changing.
var bookkeepingFields = map[string]struct{}{
	"sys_created_on": {},
	"sys_updated_on": {},
}

const bookkeepingPrefix = "etl_"

// Compute returns the content fingerprint of a record's field bag as a hex
// string. The digest is deterministic: fields are canonicalized by sorted key
// before hashing, so map iteration order never affects the result.
//
// Audit timestamps and ETL bookkeeping fields are excluded, which means a
// remote touch that changes only sys_updated_on yields the same fingerprint.
// That is the one documented false negative; any domain field change produces
// a different digest. The hash is an equality proxy, not a security boundary.
func Compute(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if excluded(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha1.New()
	for _, k := range keys {
		// Field separators prevent ambiguity between ("ab","c") and ("a","bc")
		h.Write([]byte(k))
		h.Write([]byte{0x00})
		h.Write([]byte(fields[k]))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func excluded(field string) bool {
	if strings.HasPrefix(field, bookkeepingPrefix) {
		return true
	}
	_, ok := bookkeepingFields[field]
	return ok
}
