// Package urlcontent retrieves the readable title and text of a web page
// through a content-extraction endpoint.
//
// [Client.Fetch] makes a single attempt and never returns an error: failures
// are encoded in [ContentRecord.Error]. The response body is mapped field by
// field and anything other than a JSON object with string "title" and "text"
// is reported as a parsing error. [NewTool] exposes the client as the
// "get_url_content" tool.
package urlcontent
