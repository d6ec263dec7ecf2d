package handlers

import (
	"net/http"

	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary   List posts
// @Tags      posts
// @Produce   json
// @Success   200  {array}   models.Post
// @Failure   401  {object}  map[string]string
// @Router    /posts [get]
// @Security  BearerAuth
func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.services.Posts.ListAll(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err, "posts_list_failed")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// @Summary   List own posts
// @Tags      posts
// @Produce   json
// @Success   200  {array}   models.Post
// @Failure   401  {object}  map[string]string
// @Router    /posts/my-posts [get]
// @Security  BearerAuth
func (h *Handler) listMyPosts(c *gin.Context) {
	actor := actorFrom(c)
	posts, err := h.services.Posts.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err, "posts_list_mine_failed", "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// @Summary   Create post
// @Tags      posts
// @Accept    json
// @Produce   json
// @Param     input  body      service.PostInput  true  "title, text"
// @Success   201    {object}  models.Post
// @Failure   401    {object}  map[string]string
// @Failure   422    {object}  map[string]interface{}
// @Router    /posts [post]
// @Security  BearerAuth
func (h *Handler) createPost(c *gin.Context) {
	var input service.PostInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}
	actor := actorFrom(c)
	post, err := h.services.Posts.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.writeError(c, err, "post_create_failed", "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// @Summary   Get post
// @Tags      posts
// @Produce   json
// @Param     id   path      int  true  "Post ID"
// @Success   200  {object}  models.Post
// @Failure   401  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /posts/{id} [get]
// @Security  BearerAuth
func (h *Handler) getPost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.services.Posts.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err, "post_get_failed", "post_id", id)
		return
	}
	c.JSON(http.StatusOK, post)
}

// @Summary      Update post
// @Description  Only the author may update. PATCH is accepted as an alias.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id     path      int                true  "Post ID"
// @Param        input  body      service.PostInput  true  "title, text"
// @Success      200    {object}  models.Post
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]interface{}
// @Router       /posts/{id} [put]
// @Security     BearerAuth
func (h *Handler) updatePost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	post, err := h.services.Posts.Update(c.Request.Context(), actor, id, h.bodyDecoder(c))
	if err != nil {
		h.writeError(c, err, "post_update_failed", "post_id", id, "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusOK, post)
}

// @Summary   Delete post
// @Tags      posts
// @Produce   json
// @Param     id   path      int  true  "Post ID"
// @Success   200  {object}  map[string]bool
// @Failure   401  {object}  map[string]string
// @Failure   403  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Failure   500  {object}  map[string]bool
// @Router    /posts/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deletePost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	if err := h.services.Posts.Delete(c.Request.Context(), actor, id); err != nil {
		h.writeDeleteError(c, err, "post_delete_failed", "post_id", id, "user_id", actor.ID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
