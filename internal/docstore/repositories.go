package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"folio/internal/models"
	"folio/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepo struct{ coll *mongo.Collection }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", usersCollection)()
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err, "User", user.Email)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer observability.TrackQuery("read", usersCollection)()
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err, "User", id)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observability.TrackQuery("read", usersCollection)()
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "User", email)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", usersCollection)()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translate(err, "User", user.ID)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

type postRepo struct{ coll *mongo.Collection }

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", postsCollection)()
	if post.Categories == nil {
		post.Categories = []string{}
	}
	_, err := r.coll.InsertOne(ctx, post)
	return translate(err, "Post", post.Slug)
}

func (r *postRepo) findOne(ctx context.Context, filter bson.M, id string) (*models.Post, error) {
	defer observability.TrackQuery("read", postsCollection)()
	var post models.Post
	if err := r.coll.FindOne(ctx, filter).Decode(&post); err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *postRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *postRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	defer observability.TrackQuery("read", postsCollection)()
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "Post", slug)
	}
	return n > 0, nil
}

func (r *postRepo) List(ctx context.Context, limit, offset int, category string) ([]*models.Post, error) {
	defer observability.TrackQuery("list", postsCollection)()
	filter := bson.M{}
	if category != "" {
		filter["categories"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category) + "$", Options: "i"}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "Post", "list")
	}
	posts := make([]*models.Post, 0)
	if err := cur.All(ctx, &posts); err != nil {
		return nil, translate(err, "Post", "list")
	}
	return posts, nil
}

func (r *postRepo) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", postsCollection)()
	// Counters are never part of $set; they only move through IncrementCounter.
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"slug":       post.Slug,
		"title":      post.Title,
		"content":    post.Content,
		"categories": post.Categories,
		"updated_at": post.UpdatedAt,
	}})
	if err != nil {
		return translate(err, "Post", post.Slug)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", postsCollection)()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "Post", id)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepo) IncrementCounter(ctx context.Context, postID string, field models.CounterField, delta int64) error {
	if !field.Valid() {
		return fmt.Errorf("unknown post counter %q", field)
	}
	defer observability.TrackQuery("increment", postsCollection)()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{string(field): delta}})
	if err != nil {
		return translate(err, "Post", postID)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

type commentRepo struct{ coll *mongo.Collection }

func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", commentsCollection)()
	_, err := r.coll.InsertOne(ctx, comment)
	return translate(err, "Comment", comment.ID)
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	defer observability.TrackQuery("read", commentsCollection)()
	var comment models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", commentsCollection)()
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, translate(err, "Comment", postID)
	}
	comments := make([]*models.Comment, 0)
	if err := cur.All(ctx, &comments); err != nil {
		return nil, translate(err, "Comment", postID)
	}
	return comments, nil
}

func (r *commentRepo) Update(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("update", commentsCollection)()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": comment.ID}, bson.M{"$set": bson.M{
		"content":    comment.Content,
		"updated_at": comment.UpdatedAt,
	}})
	if err != nil {
		return translate(err, "Comment", comment.ID)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer observability.TrackQuery("delete", commentsCollection)()
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, translate(err, "Comment", ids[0])
	}
	return res.DeletedCount, nil
}

func (r *commentRepo) DeleteByPost(ctx context.Context, postID string) error {
	defer observability.TrackQuery("delete", commentsCollection)()
	_, err := r.coll.DeleteMany(ctx, bson.M{"post_id": postID})
	return translate(err, "Comment", postID)
}

type likeRepo struct{ coll *mongo.Collection }

func (r *likeRepo) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("read", likesCollection)()
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": likeID(postID, userID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "Like", postID)
	}
	return n > 0, nil
}

func (r *likeRepo) Add(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("create", likesCollection)()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": likeID(postID, userID)},
		bson.M{"$setOnInsert": bson.M{"post_id": postID, "user_id": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two upserts racing on the same _id: the loser saw an existing like.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, translate(err, "Like", postID)
	}
	return res.UpsertedCount > 0, nil
}

func (r *likeRepo) Remove(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("delete", likesCollection)()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": likeID(postID, userID)})
	if err != nil {
		return false, translate(err, "Like", postID)
	}
	return res.DeletedCount > 0, nil
}

func (r *likeRepo) ListUserIDs(ctx context.Context, postID string) ([]string, error) {
	defer observability.TrackQuery("list", likesCollection)()
	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, translate(err, "Like", postID)
	}
	var likes []models.Like
	if err := cur.All(ctx, &likes); err != nil {
		return nil, translate(err, "Like", postID)
	}
	ids := make([]string, len(likes))
	for i, l := range likes {
		ids[i] = l.UserID
	}
	return ids, nil
}

func (r *likeRepo) DeleteByPost(ctx context.Context, postID string) error {
	defer observability.TrackQuery("delete", likesCollection)()
	_, err := r.coll.DeleteMany(ctx, bson.M{"post_id": postID})
	return translate(err, "Like", postID)
}
