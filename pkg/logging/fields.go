package logging

import "log/slog"

// Domain identifiers

func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Socket(id string) slog.Attr {
	return slog.String("socket_id", id)
}

func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
