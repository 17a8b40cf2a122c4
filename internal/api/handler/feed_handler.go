package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// FeedServer upgrades a request to a websocket subscription.
type FeedServer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

type FeedHandler struct {
	feed FeedServer
}

func NewFeedHandler(feed FeedServer) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Subscribe streams order.placed messages to admins.
//
// @Summary      Order feed
// @Description  Websocket. Browsers may pass the token as ?access_token=.
// @Tags         orders
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /orders/feed [get]
func (h *FeedHandler) Subscribe(c echo.Context) error {
	return h.feed.Serve(c.Response(), c.Request())
}
