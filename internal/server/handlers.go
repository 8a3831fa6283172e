package server

import (
	"net/http"

	"github.com/Aidin1998/todolist/common/apiutil"
	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const genericErrorMessage = "An error occurred."

type addItemForm struct {
	NewItem string `form:"newItem"`
	List    string `form:"list"`
}

type deleteItemForm struct {
	Checkbox string `form:"checkbox"`
	ListName string `form:"listName"`
}

// GET /
func (s *Server) handleGetToday(c *gin.Context) {
	page, err := s.todos.GetToday(c.Request.Context())
	if err != nil {
		s.fail(c, err, "failed to load today list", zap.String("list", todo.TodayListName))
		return
	}
	s.renderPage(c, page)
}

// GET /:customListName
func (s *Server) handleGetList(c *gin.Context) {
	name := c.Param("customListName")
	page, err := s.todos.GetOrCreateList(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err, "failed to load list", zap.String("list", name))
		return
	}
	s.renderPage(c, page)
}

// POST /
func (s *Server) handleAddItem(c *gin.Context) {
	var form addItemForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, errors.Invalid.Explain("Invalid form.").Wrap(err), "failed to parse add form")
		return
	}

	path, err := s.todos.AddItem(c.Request.Context(), form.List, form.NewItem)
	if err != nil {
		s.fail(c, err, "failed to add item", zap.String("list", form.List))
		return
	}
	c.Redirect(http.StatusFound, path)
}

// POST /delete
func (s *Server) handleDeleteItem(c *gin.Context) {
	var form deleteItemForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, errors.Invalid.Explain("Invalid form.").Wrap(err), "failed to parse delete form")
		return
	}

	path, err := s.todos.DeleteItem(c.Request.Context(), form.ListName, form.Checkbox)
	if err != nil {
		s.fail(c, err, "failed to delete item",
			zap.String("list", form.ListName),
			zap.String("item_id", form.Checkbox))
		return
	}
	c.Redirect(http.StatusFound, path)
}

// GET /about
func (s *Server) handleAbout(c *gin.Context) {
	c.HTML(http.StatusOK, "about.tmpl", gin.H{})
}

func (s *Server) renderPage(c *gin.Context, page *todo.Page) {
	if page.Redirect != "" {
		c.Redirect(http.StatusFound, page.Redirect)
		return
	}
	c.HTML(http.StatusOK, "list.tmpl", gin.H{
		"ListTitle": page.View.Title,
		"Items":     page.View.Items,
	})
}

// fail logs err and answers with a plain-text error. Client errors keep
// their status and show the message of the outermost *errors.Error;
// everything else becomes a generic 500.
func (s *Server) fail(c *gin.Context, err error, msg string, fields ...zap.Field) {
	status := errors.HTTPStatus(err)
	fields = append(fields, zap.Error(err), zap.Int("status", status))

	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, fields...)
		apiutil.WriteTextError(c, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	s.logger.Warn(msg, fields...)
	text := http.StatusText(status)
	var e *errors.Error
	if errors.As(err, &e) && e.Message != "" {
		text = e.Message
	}
	apiutil.WriteTextError(c, status, text)
}
