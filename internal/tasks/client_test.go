package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const todoJSON = `[
  {"context_name": "CSE 101", "assignment": {"name": "Lab 3", "due_at": "2024-03-05T07:59:00Z", "points_possible": 20}},
  {"context_name": "MATH 19A", "quiz": {"title": "Quiz 4"}},
  {"context_name": "WRIT 2", "assignment": {"name": "", "due_at": null}},
  {"context_name": "PHYS 5A", "assignment": {"name": "Problem set", "due_at": "next week"}}
]`

func TestTodo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/todo", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(todoJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	require.True(t, c.Enabled())

	got, err := c.Todo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Task{
		{Name: "Lab 3", Due: "Mar 5, 2024", Points: 20, Course: "CSE 101"},
		{Name: "Quiz 4", Due: "No Date", Course: "MATH 19A"},
		{Name: "Unnamed Task", Due: "No Date", Course: "WRIT 2"},
		{Name: "Problem set", Due: "next week", Course: "PHYS 5A"},
	}, got)

	assert.Len(t, Top(got, 3), 3)
	assert.Len(t, Top(got, 10), 4)
	assert.Empty(t, Top(got, 0))
}

func TestTodoErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid access token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "bad").Todo(context.Background())
	assert.ErrorContains(t, err, "401")

	_, err = NewClient(srv.URL, "  ").Todo(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTodoMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok").Todo(context.Background())
	assert.Error(t, err)
}

func TestDefaultBaseURL(t *testing.T) {
	c := NewClient("", "tok")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.False(t, NewClient("", "").Enabled())
}
