package controllers_test

import (
	"context"
	"fmt"
	"testing"

	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationFeed(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.SeedUser(t, env.DB, "ana", models.RoleInstructor)
	bo := testutil.SeedUser(t, env.DB, "bo", models.RoleStudent)

	resp := env.Do(t, "POST", "/api/notifications", map[string]interface{}{
		"userId": bo.ID, "message": "Live session tomorrow",
	}, testutil.Token(t, env.Cfg, ana))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created models.Notification
	testutil.Decode(t, resp, &created)
	assert.Equal(t, models.NotificationInfo, created.Type)
	assert.Equal(t, bo.ID, created.UserID)
	assert.False(t, created.Read)

	_, err := services.Notify(context.Background(), env.DB, bo.ID, "Newer", models.NotificationEnrollment)
	require.NoError(t, err)
	_, err = services.Notify(context.Background(), env.DB, ana.ID, "Not for bo", "")
	require.NoError(t, err)

	resp = env.Do(t, "GET", "/api/notifications", nil, testutil.Token(t, env.Cfg, bo))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var feed []models.Notification
	testutil.Decode(t, resp, &feed)
	require.Len(t, feed, 2)
	assert.Equal(t, "Newer", feed[0].Message)
	assert.Equal(t, "Live session tomorrow", feed[1].Message)

	resp = env.Do(t, "POST", "/api/notifications", map[string]interface{}{
		"userId": bo.ID, "message": "x", "type": "spam",
	}, testutil.Token(t, env.Cfg, ana))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.Do(t, "GET", "/api/notifications", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMarkRead(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.SeedUser(t, env.DB, "ana", models.RoleInstructor)
	bo := testutil.SeedUser(t, env.DB, "bo", models.RoleStudent)

	n, err := services.Notify(context.Background(), env.DB, bo.ID, "hello", "")
	require.NoError(t, err)
	path := fmt.Sprintf("/api/notifications/%d/read", n.ID)

	// someone else's notification looks like it does not exist
	resp := env.Do(t, "PUT", path, nil, testutil.Token(t, env.Cfg, ana))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var stored models.Notification
	require.NoError(t, env.DB.First(&stored, n.ID).Error)
	assert.False(t, stored.Read)

	resp = env.Do(t, "PUT", path, nil, testutil.Token(t, env.Cfg, bo))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var marked models.Notification
	testutil.Decode(t, resp, &marked)
	assert.True(t, marked.Read)

	require.NoError(t, env.DB.First(&stored, n.ID).Error)
	assert.True(t, stored.Read)

	resp = env.Do(t, "PUT", "/api/notifications/9999/read", nil, testutil.Token(t, env.Cfg, bo))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
