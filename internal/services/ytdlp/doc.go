// Package ytdlp wraps the yt-dlp command line tool.
//
// The client exposes exactly two entry points: a metadata-only dump used to
// read the stream catalog and release date, and the download invocation that
// fetches the selected streams into a workspace. Argument construction is
// centralized here so the orchestrator never touches raw argv.
package ytdlp
