// Package codec converts flashcard lists to and from the CSV and JSON text
// files users import and export.
//
// CSV here is not RFC 4180: the field and record separators are arbitrary
// non-empty strings, every field is written quoted, and import splits on the
// separators before removing quotes. A field that contains the field or record
// separator therefore does not survive a round trip; choosing separators that
// do not occur in the content is the caller's responsibility.
package codec
