package handlers

import "time"

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"Absolute URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// ShortenResponse is the response for a successfully created short link.
type ShortenResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		Word      string    `doc:"The allocated word"                example:"walnut"                       json:"word"`
		ShortURL  string    `doc:"The full short URL"                example:"http://localhost:8888/u/walnut" json:"shortUrl"`
		URL       string    `doc:"The destination URL"               example:"https://example.com/very/long/path" json:"url"`
		ExpiresAt time.Time `doc:"When the link stops resolving"     json:"expiresAt"`
	}
}

// RedirectRequest is the request for resolving a short link.
type RedirectRequest struct {
	Word string `doc:"The short word" example:"walnut" path:"word"`
}

// RedirectResponse redirects to the destination URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The destination URL" header:"Location"`
	}
}

// PostMessageRequest is the request body for posting a guestboard message.
type PostMessageRequest struct {
	Body struct {
		Message string `doc:"Message text" example:"hello from the internet" json:"message" maxLength:"2000"`
	}
}

// PostMessageResponse is the response for a stored guestboard message.
type PostMessageResponse struct {
	Body struct {
		ID        string    `doc:"Message id"        json:"id"`
		Message   string    `doc:"Stored text"       json:"message"`
		CreatedAt time.Time `doc:"Server timestamp"  json:"createdAt"`
	}
}

// ListMessagesRequest selects the guestboard listing direction.
type ListMessagesRequest struct {
	Order string `default:"desc" doc:"Insertion order of the listing" enum:"asc,desc" query:"order"`
}

// MessageView is one guestboard entry as shown to callers.
type MessageView struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListMessagesResponse is the guestboard listing.
type ListMessagesResponse struct {
	Body struct {
		Messages []MessageView `json:"messages"`
	}
}

// PollRequest is the request for the guestboard long poll.
type PollRequest struct {
	TimeoutSeconds int `default:"30" doc:"Maximum seconds to wait for a new message" maximum:"60" minimum:"1" query:"timeout"`
}

// PollResponse reports whether a message was posted during the wait.
// No new message within the timeout is a normal outcome, not an error.
type PollResponse struct {
	Body struct {
		NewMessage bool `doc:"Whether a new message was posted" json:"newMessage"`
	}
}
