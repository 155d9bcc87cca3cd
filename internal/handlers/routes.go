package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the short link and guestboard routes.
func RegisterRoutes(api huma.API, links *LinkHandler, board *GuestboardHandler) {
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short link",
		Description:   "Allocates a word from the pool and maps it to the submitted URL until it expires.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, links.CreateShortLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/u/{word}",
		Summary:     "Redirect to destination",
		Description: "Redirects to the URL behind the word. Expired and unknown words both yield 404.",
		Tags:        []string{"Links"},
	}, links.Redirect)

	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/guestboard",
		Summary:       "Post a message",
		Tags:          []string{"Guestboard"},
		DefaultStatus: http.StatusCreated,
	}, board.PostMessage)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/guestboard",
		Summary:     "List messages",
		Tags:        []string{"Guestboard"},
	}, board.ListMessages)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/guestboard/poll",
		Summary:     "Wait for the next message",
		Description: "Long poll that returns when a new message is posted or the timeout elapses.",
		Tags:        []string{"Guestboard"},
	}, board.PollMessages)
}
