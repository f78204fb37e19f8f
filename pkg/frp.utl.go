/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

func ModelToJSONString(v interface{}) (js string, err error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

/* FIELDS BOUND FOR varchar(n) COLUMNS ARE TRUNCATED RATHER THAN REJECTED;
THE CUT NEVER SPLITS A MULTI-BYTE RUNE */
func ValidateStringLength(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

/* ISO-8601 LAYOUTS ACCEPTED FROM FIELD DEVICES; RFC3339 FIRST */
var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

/* PARSE AN ISO-8601 TIMESTAMP TO UTC UNIX MILLISECONDS */
func ISO8601ToUnixMilli(ts string) (t int64, err error) {
	for _, layout := range iso8601Layouts {
		parsed, perr := time.Parse(layout, ts)
		if perr == nil {
			return parsed.UTC().UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("invalid ISO-8601 timestamp: %s", ts)
}
