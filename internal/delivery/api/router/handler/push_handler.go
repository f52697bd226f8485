package handler

import (
	"qimat/internal/delivery/api/response"
	"qimat/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PushHandlerParams holds dependencies for PushHandler, injected by Fx.
type PushHandlerParams struct {
	fx.In

	PushUC usecase.PushUsecase
}

// PushHandler serves the browser push subscription endpoints.
type PushHandler struct {
	pushUC usecase.PushUsecase
}

// NewPushHandler is the constructor for PushHandler.
func NewPushHandler(params PushHandlerParams) *PushHandler {
	return &PushHandler{pushUC: params.PushUC}
}

// SubscriptionKeys are the encryption keys of a browser PushSubscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// BrowserSubscription mirrors PushSubscription.toJSON() in the browser.
type BrowserSubscription struct {
	Endpoint string           `json:"endpoint" validate:"required,url"`
	Keys     SubscriptionKeys `json:"keys"`
}

// SubscribeRequest represents the request body for registering a push endpoint
type SubscribeRequest struct {
	ClientID     string              `json:"clientId" validate:"required,max=128"`
	Subscription BrowserSubscription `json:"subscription"`
	FavoriteIDs  []int64             `json:"favoriteIds" validate:"omitempty,max=500,dive,gt=0"`
}

// PreferencesRequest represents the request body for replacing favorites
type PreferencesRequest struct {
	ClientID    string  `json:"clientId" validate:"required,max=128"`
	FavoriteIDs []int64 `json:"favoriteIds" validate:"omitempty,max=500,dive,gt=0"`
}

// UnsubscribeRequest represents the request body for opting out
type UnsubscribeRequest struct {
	ClientID string `json:"clientId" validate:"required,max=128"`
}

// PublicKey handles GET /api/push/public-key.
func (h *PushHandler) PublicKey(c echo.Context) error {
	key, err := h.pushUC.PublicKey(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, map[string]string{"publicKey": key})
}

// Subscribe handles POST /api/push/subscribe.
func (h *PushHandler) Subscribe(c echo.Context) error {
	var req SubscribeRequest
	if ok, err := bindAndValidate(c, &req, "Invalid subscription input"); !ok {
		return err
	}

	if err := h.pushUC.Subscribe(c.Request().Context(), &usecase.SubscribeInput{
		ClientID:    req.ClientID,
		Endpoint:    req.Subscription.Endpoint,
		P256dh:      req.Subscription.Keys.P256dh,
		Auth:        req.Subscription.Keys.Auth,
		FavoriteIDs: req.FavoriteIDs,
	}); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}

// UpdatePreferences handles PUT /api/push/preferences.
func (h *PushHandler) UpdatePreferences(c echo.Context) error {
	var req PreferencesRequest
	if ok, err := bindAndValidate(c, &req, "Invalid preferences input"); !ok {
		return err
	}

	if err := h.pushUC.UpdatePreferences(c.Request().Context(), req.ClientID, req.FavoriteIDs); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}

// Unsubscribe handles POST /api/push/unsubscribe.
func (h *PushHandler) Unsubscribe(c echo.Context) error {
	var req UnsubscribeRequest
	if ok, err := bindAndValidate(c, &req, "Invalid unsubscribe input"); !ok {
		return err
	}

	if err := h.pushUC.Unsubscribe(c.Request().Context(), req.ClientID); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}
