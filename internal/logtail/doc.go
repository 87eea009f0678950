// Package logtail reads the tail of leaddesk's JSON log file for the activity
// view.
//
// Read keeps a ring buffer of maxLines, so memory stays proportional to the
// requested tail rather than the file size. A missing file is not an error;
// it yields no lines.
//
// Parse decodes one slog JSON record into an Entry, lifting time, level, msg
// and component into fields and stringifying everything else into Attrs.
// Lines that are not JSON objects are returned as raw entries so nothing the
// file contains is hidden.
//
//	entries, err := logtail.Tail(cfg.Log.File, 400)
//	if err != nil {
//		return err
//	}
//	visible := logtail.Filter(entries, "warn", "get_leads")
package logtail
