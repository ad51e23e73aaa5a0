package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shareit/internal/models"

	"github.com/gin-gonic/gin"
)

// relay forwards the request as received.
func (g *Gateway) relay(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unable to read request body")
		return
	}
	g.forward(c, body)
}

// withBody validates the JSON body into dst, then relays the original bytes.
func (g *Gateway) withBody(c *gin.Context, dst any) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "unable to read request body")
		return
	}
	if err := json.Unmarshal(body, dst); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := g.validate.Struct(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return
	}
	g.forward(c, body)
}

func (g *Gateway) checkPage(c *gin.Context) bool {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "from and size must be integers")
		return false
	}
	if err := g.validate.Struct(q); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func checkState(c *gin.Context) bool {
	if _, err := models.ParseBookingState(c.Query("state")); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (g *Gateway) forward(c *gin.Context, body []byte) {
	resp, err := g.backend.Forward(
		c.Request.Context(),
		c.Request.Method,
		c.Request.URL.Path,
		c.Request.URL.RawQuery,
		c.GetHeader(models.HeaderUserID),
		c.GetString(requestIDKey),
		body,
	)
	if err != nil {
		g.logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("backend call failed")
		abortWithError(c, http.StatusBadGateway, "backend unavailable")
		return
	}

	for _, h := range relayedHeaders {
		if v := resp.Header.Get(h); v != "" {
			c.Header(h, v)
		}
	}
	contentType := resp.Header.Get("Content-Type")
	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

func (g *Gateway) paged(c *gin.Context) {
	if !g.checkPage(c) {
		return
	}
	g.forward(c, nil)
}

func (g *Gateway) createUser(c *gin.Context) {
	g.withBody(c, &createUserRequest{})
}

func (g *Gateway) updateUser(c *gin.Context) {
	g.withBody(c, &updateUserRequest{})
}

func (g *Gateway) createItem(c *gin.Context) {
	g.withBody(c, &createItemRequest{})
}

func (g *Gateway) updateItem(c *gin.Context) {
	g.withBody(c, &updateItemRequest{})
}

func (g *Gateway) addComment(c *gin.Context) {
	g.withBody(c, &commentRequest{})
}

func (g *Gateway) createRequest(c *gin.Context) {
	g.withBody(c, &itemRequestRequest{})
}

func (g *Gateway) createBooking(c *gin.Context) {
	g.withBody(c, &bookingRequest{})
}

func (g *Gateway) decideBooking(c *gin.Context) {
	if _, err := strconv.ParseBool(c.Query("approved")); err != nil {
		abortWithError(c, http.StatusBadRequest, "approved must be true or false")
		return
	}
	g.forward(c, nil)
}

func (g *Gateway) listBookings(c *gin.Context) {
	if !checkState(c) || !g.checkPage(c) {
		return
	}
	g.forward(c, nil)
}

func (g *Gateway) exportBookings(c *gin.Context) {
	if !checkState(c) {
		return
	}
	g.forward(c, nil)
}
