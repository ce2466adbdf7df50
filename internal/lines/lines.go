// Package lines provides a bufio split function for ffmpeg stderr.
//
// ffmpeg redraws its stats line in place with a bare carriage return, so a
// captured stream holds many progress reports on what bufio.ScanLines would
// treat as a single line.
package lines

import "bytes"

// Scan is a bufio.SplitFunc that splits on "\n", "\r" or "\r\n".
// Terminators are not included in the returned token.
func Scan(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			// A trailing '\r' may be the first half of "\r\n".
			if !atEOF {
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
