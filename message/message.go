// Package message splits a raw RFC 5322 message into its header lines
// and body, and locates which part of a multipart body carries the
// content a DKIM signature is expected to cover.
package message

import (
	"bytes"
	"errors"
	"mime"
	"strings"
)

// ErrMalformedEmail is returned when raw_email cannot be split into a
// header block and a body.
var ErrMalformedEmail = errors.New("message: cannot parse headers and body")

// Split divides a raw RFC 5322 message into its ordered header field
// lines (each including its trailing CRLF, folded continuation lines
// kept intact) and the body that follows the header/body blank line.
func Split(raw []byte) (headers []string, body []byte, err error) {
	idx := bytes.Index(raw, []byte("\r\n\r\n"))
	if idx == -1 {
		return nil, nil, ErrMalformedEmail
	}
	headerBlock := raw[:idx+2]
	body = raw[idx+4:]

	headers = splitHeaderLines(headerBlock)
	if len(headers) == 0 {
		return nil, nil, ErrMalformedEmail
	}
	return headers, body, nil
}

// splitHeaderLines reassembles folded header fields into single
// strings, each ending in its own trailing CRLF.
func splitHeaderLines(block []byte) []string {
	lines := strings.Split(string(block), "\r\n")
	var headers []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		cur.WriteString("\r\n")
		headers = append(headers, cur.String())
		cur.Reset()
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		folded := len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
		if folded && cur.Len() > 0 {
			cur.WriteString("\r\n")
			cur.WriteString(line)
			continue
		}
		flush()
		cur.WriteString(line)
	}
	flush()

	return headers
}

// contentType returns the lowercased media type and parameters of the
// Content-Type header among headerLines, or ("", nil, false) if
// absent or unparsable.
func contentType(headerLines []string) (mediaType string, params map[string]string, ok bool) {
	for _, h := range headerLines {
		name, value, found := strings.Cut(h, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(name), "Content-Type") {
			continue
		}
		mt, p, err := mime.ParseMediaType(strings.TrimSpace(strings.TrimRight(value, "\r\n")))
		if err != nil {
			return "", nil, false
		}
		return strings.ToLower(mt), p, true
	}
	return "", nil, false
}

// LocateBody returns the byte sequence a DKIM signature is expected to
// cover, per the body locator rules: the whole body for a non-
// multipart message, or the preferred subpart (text/html, else
// text/plain, else the first subpart, in source order) for a
// multipart message. Parts are located using a boundary scanner
// rather than mime/multipart, since that package transparently
// decodes quoted-printable transfer encoding and would change the
// byte-exact body the DKIM signature was computed over.
func LocateBody(headerLines []string, body []byte) []byte {
	mediaType, params, ok := contentType(headerLines)
	if !ok || !strings.HasPrefix(mediaType, "multipart/") {
		return body
	}
	boundary := params["boundary"]
	if boundary == "" {
		return body
	}

	leaves := collectLeaves(body, boundary)
	if len(leaves) == 0 {
		return body
	}

	for _, leaf := range leaves {
		if leaf.mediaType == "text/html" {
			return leaf.body
		}
	}
	for _, leaf := range leaves {
		if leaf.mediaType == "text/plain" {
			return leaf.body
		}
	}
	return leaves[0].body
}

type leafPart struct {
	mediaType string
	body      []byte
}

// collectLeaves walks a MIME multipart body depth-first, returning its
// non-multipart leaf parts in source order.
func collectLeaves(body []byte, boundary string) []leafPart {
	var leaves []leafPart
	for _, raw := range splitOnBoundary(body, boundary) {
		partHeaders, partBody := splitPart(raw)
		mt, params, ok := contentType(partHeaders)
		if ok && strings.HasPrefix(mt, "multipart/") && params["boundary"] != "" {
			leaves = append(leaves, collectLeaves(partBody, params["boundary"])...)
			continue
		}
		leaves = append(leaves, leafPart{mediaType: mt, body: partBody})
	}
	return leaves
}

// splitOnBoundary implements the RFC 2046 multipart delimiter scan,
// returning each part's raw bytes (headers and body, undecoded).
// Preamble and epilogue text outside the delimiters are discarded.
func splitOnBoundary(body []byte, boundary string) [][]byte {
	delim := []byte("--" + boundary)
	var parts [][]byte
	rest := body

	for {
		idx := bytes.Index(rest, delim)
		if idx == -1 {
			break
		}
		rest = rest[idx+len(delim):]
		if bytes.HasPrefix(rest, []byte("--")) {
			break
		}
		nl := bytes.Index(rest, []byte("\r\n"))
		if nl == -1 {
			break
		}
		rest = rest[nl+2:]

		next := bytes.Index(rest, delim)
		var segment []byte
		if next == -1 {
			segment = rest
			rest = nil
		} else {
			segment = bytes.TrimSuffix(rest[:next], []byte("\r\n"))
			rest = rest[next:]
		}
		parts = append(parts, segment)
		if rest == nil {
			break
		}
	}
	return parts
}

// splitPart divides one multipart segment into its header lines and
// body, tolerating a part with no body.
func splitPart(raw []byte) ([]string, []byte) {
	idx := bytes.Index(raw, []byte("\r\n\r\n"))
	if idx == -1 {
		return splitHeaderLines(append(append([]byte{}, raw...), []byte("\r\n")...)), nil
	}
	return splitHeaderLines(raw[:idx+2]), raw[idx+4:]
}
