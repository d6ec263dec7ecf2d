package handlers

import (
	"net/http"

	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary   List comments
// @Tags      comments
// @Produce   json
// @Success   200  {array}   models.Comment
// @Failure   401  {object}  map[string]string
// @Router    /comments [get]
// @Security  BearerAuth
func (h *Handler) listComments(c *gin.Context) {
	comments, err := h.services.Comments.ListAll(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err, "comments_list_failed")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary   List own comments
// @Tags      comments
// @Produce   json
// @Success   200  {array}   models.Comment
// @Failure   401  {object}  map[string]string
// @Router    /comments/my-comments [get]
// @Security  BearerAuth
func (h *Handler) listMyComments(c *gin.Context) {
	actor := actorFrom(c)
	comments, err := h.services.Comments.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err, "comments_list_mine_failed", "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary   List comments of a post
// @Tags      comments
// @Produce   json
// @Param     post  path      int  true  "Post ID"
// @Success   200   {array}   models.Comment
// @Failure   401   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Router    /comments/by-post/{post} [get]
// @Security  BearerAuth
func (h *Handler) listPostComments(c *gin.Context) {
	postID, ok := h.pathID(c, "post")
	if !ok {
		return
	}
	comments, err := h.services.Comments.ListForPost(c.Request.Context(), actorFrom(c), postID)
	if err != nil {
		h.writeError(c, err, "comments_list_post_failed", "post_id", postID)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary      Create comment
// @Description  post_id must name an existing post; comment_id, when set, an existing comment on that post.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        input  body      service.CommentInput  true  "text, post_id, comment_id"
// @Success      201    {object}  models.Comment
// @Failure      401    {object}  map[string]string
// @Failure      422    {object}  map[string]interface{}
// @Router       /comments [post]
// @Security     BearerAuth
func (h *Handler) createComment(c *gin.Context) {
	var input service.CommentInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}
	actor := actorFrom(c)
	comment, err := h.services.Comments.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.writeError(c, err, "comment_create_failed", "user_id", actor.ID, "post_id", input.PostID)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// @Summary   Get comment
// @Tags      comments
// @Produce   json
// @Param     id   path      int  true  "Comment ID"
// @Success   200  {object}  models.Comment
// @Failure   401  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /comments/{id} [get]
// @Security  BearerAuth
func (h *Handler) getComment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	comment, err := h.services.Comments.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err, "comment_get_failed", "comment_id", id)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// @Summary      Update comment
// @Description  Only the author may update; only the text changes.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id     path      int                         true  "Comment ID"
// @Param        input  body      service.CommentUpdateInput  true  "text"
// @Success      200    {object}  models.Comment
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]interface{}
// @Router       /comments/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateComment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	comment, err := h.services.Comments.Update(c.Request.Context(), actor, id, h.bodyDecoder(c))
	if err != nil {
		h.writeError(c, err, "comment_update_failed", "comment_id", id, "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// @Summary   Delete comment
// @Tags      comments
// @Produce   json
// @Param     id   path      int  true  "Comment ID"
// @Success   200  {object}  map[string]bool
// @Failure   401  {object}  map[string]string
// @Failure   403  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Failure   500  {object}  map[string]bool
// @Router    /comments/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	if err := h.services.Comments.Delete(c.Request.Context(), actor, id); err != nil {
		h.writeDeleteError(c, err, "comment_delete_failed", "comment_id", id, "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
