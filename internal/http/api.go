package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storyhub/internal/domain"
	"storyhub/internal/hub"
	"storyhub/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth          service.AuthService
	stories       service.StoryService
	announcements service.AnnouncementService
	checkout      service.CheckoutService
	messages      service.MessageService
	hub           *hub.Hub
	log           *logrus.Logger
}

func NewHandler(
	auth service.AuthService,
	stories service.StoryService,
	announcements service.AnnouncementService,
	checkout service.CheckoutService,
	messages service.MessageService,
	h *hub.Hub,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		auth:          auth,
		stories:       stories,
		announcements: announcements,
		checkout:      checkout,
		messages:      messages,
		hub:           h,
		log:           log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", h.authRequired(), h.me)

		api.POST("/stories", h.authRequired(), h.createStory)
		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)
		api.DELETE("/stories/:id", h.authRequired(), h.deleteStory)
		api.POST("/stories/:id/favorite", h.authRequired(), h.toggleFavorite)
		api.POST("/stories/:id/checkout", h.authRequired(), h.checkoutStory)

		api.POST("/announcements", h.authRequired(), h.postAnnouncement)
		api.GET("/announcements", h.listAnnouncements)

		api.GET("/rooms/:room/messages", h.roomHistory)
		api.GET("/ws", h.serveWS)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Username)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": userToResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": userToResponse(user)})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(currentUser(c)))
}

type createStoryRequest struct {
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
	Type    string   `json:"type"`
	Price   *int64   `json:"price"`
}

func (h *Handler) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story, err := h.stories.Create(c.Request.Context(), currentUser(c).ID, service.CreateStoryInput{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Body:    req.Body,
		Tags:    req.Tags,
		Type:    domain.StoryType(req.Type),
		Price:   req.Price,
	})
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, storyToResponse(*story))
}

func (h *Handler) listStories(c *gin.Context) {
	stories, err := h.stories.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondErr(c, err)
		return
	}

	resp := make([]StoryResponse, len(stories))
	for i := range stories {
		resp[i] = storyToResponse(stories[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getStory(c *gin.Context) {
	story, err := h.stories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, storyToResponse(*story))
}

func (h *Handler) deleteStory(c *gin.Context) {
	if err := h.stories.Delete(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	action, err := h.stories.ToggleFavorite(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}

func (h *Handler) checkoutStory(c *gin.Context) {
	desc, err := h.checkout.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, DescriptorResponse{
		Reference:  desc.Reference,
		StoryID:    desc.StoryID,
		Amount:     desc.Amount,
		Currency:   desc.Currency,
		PaymentURL: desc.PaymentURL,
	})
}

type postAnnouncementRequest struct {
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

func (h *Handler) postAnnouncement(c *gin.Context) {
	var req postAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.announcements.Post(c.Request.Context(), currentUser(c), req.Content, req.Pinned)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcementToResponse(*a))
}

func (h *Handler) listAnnouncements(c *gin.Context) {
	items, err := h.announcements.List(c.Request.Context())
	if err != nil {
		h.respondErr(c, err)
		return
	}

	resp := make([]AnnouncementResponse, len(items))
	for i := range items {
		resp[i] = announcementToResponse(items[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) roomHistory(c *gin.Context) {
	msgs, err := h.messages.History(c.Request.Context(), c.Param("room"), 0)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	resp := make([]MessageResponse, len(msgs))
	for i := range msgs {
		resp[i] = messageToResponse(msgs[i])
	}
	c.JSON(http.StatusOK, resp)
}

// respondErr maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error: logged, never surfaced.
func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrNotForSale):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "story is not for sale"})
	default:
		h.log.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type StoryResponse struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Type      string   `json:"type"`
	Price     *int64   `json:"price,omitempty"`
	Likes     int64    `json:"likes"`
	CreatedAt string   `json:"created_at"`
}

type AnnouncementResponse struct {
	ID        string `json:"id"`
	AdminID   string `json:"admin_id"`
	Content   string `json:"content"`
	Pinned    bool   `json:"pinned"`
	CreatedAt string `json:"created_at"`
}

type MessageResponse struct {
	ID        string  `json:"id"`
	Room      string  `json:"room"`
	SenderID  *string `json:"sender_id,omitempty"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
}

type DescriptorResponse struct {
	Reference  string `json:"reference"`
	StoryID    string `json:"story_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	PaymentURL string `json:"payment_url"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func storyToResponse(story domain.Story) StoryResponse {
	resp := StoryResponse{
		ID:        story.ID,
		UserID:    story.UserID,
		Title:     story.Title,
		Excerpt:   story.Excerpt,
		Body:      story.Body,
		Tags:      story.Tags,
		Type:      string(story.Type),
		Price:     story.Price,
		Likes:     story.Likes,
		CreatedAt: story.CreatedAt.Format(time.RFC3339),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

func announcementToResponse(a domain.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        a.ID,
		AdminID:   a.AdminID,
		Content:   a.Content,
		Pinned:    a.Pinned,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func messageToResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Room:      m.Room,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
