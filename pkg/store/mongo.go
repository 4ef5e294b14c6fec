package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Collection names. The legacy system owns "users"; the IAM system owns the
// singular-named collections.
const (
	CollUsers    = "users"
	CollIamUsers = "user"
	CollAccounts = "account"
	CollSessions = "session"
	CollJWKS     = "jwks"
)

// MongoStores bundles all collection-backed stores over a single database.
type MongoStores struct {
	Users    *MongoUserStore
	IamUsers *MongoIamUserStore
	Accounts *MongoAccountStore
	Sessions *MongoSessionStore
	Keys     *MongoKeyStore
}

// NewMongoStores wires every store to its collection on db.
func NewMongoStores(db *mongo.Database) *MongoStores {
	return &MongoStores{
		Users:    &MongoUserStore{coll: db.Collection(CollUsers)},
		IamUsers: &MongoIamUserStore{coll: db.Collection(CollIamUsers)},
		Accounts: &MongoAccountStore{coll: db.Collection(CollAccounts)},
		Sessions: &MongoSessionStore{coll: db.Collection(CollSessions)},
		Keys:     &MongoKeyStore{coll: db.Collection(CollJWKS)},
	}
}

// idFilter builds a filter matching _id either as a native ObjectID (when
// ref is hex-parseable) or as a plain string. Collections written by the IAM
// tooling use ObjectIDs; collections written by this module use strings.
func idFilter(ref string) bson.M {
	if oid, err := bson.ObjectIDFromHex(ref); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, ref}}}
	}
	return bson.M{"_id": ref}
}

// stringifyID normalizes a decoded _id into its string form.
func stringifyID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case bson.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

// userDoc decodes a user document with an _id of either representation.
type userDoc struct {
	ID        any       `bson:"_id"`
	Email     string    `bson:"email"`
	FirstName string    `bson:"firstName"`
	LastName  string    `bson:"lastName"`
	Roles     []string  `bson:"roles"`
	Verified  bool      `bson:"verified"`
	Password  string    `bson:"password"`
	IamID     string    `bson:"iamId"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *userDoc) toUser() *User {
	return &User{
		ID:        stringifyID(d.ID),
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Roles:     d.Roles,
		Verified:  d.Verified,
		Password:  d.Password,
		IamID:     d.IamID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoUserStore implements UserStore over the canonical users collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, nil
	}
	return s.findOne(ctx, idFilter(id))
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) FindByEmailOrIamID(ctx context.Context, email, iamID string) (*User, error) {
	var or bson.A
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if iamID != "" {
		or = append(or, bson.M{"iamId": iamID})
	}
	if len(or) == 0 {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"$or": or})
}

func (s *MongoUserStore) FindByFlexibleID(ctx context.Context, ref string) (*User, error) {
	if ref == "" {
		return nil, nil
	}

	// Native id and stringified id first, then the iamId string field. The
	// session collection may reference the user in any of these forms.
	user, err := s.findOne(ctx, idFilter(ref))
	if err != nil || user != nil {
		return user, err
	}
	return s.findOne(ctx, bson.M{"iamId": ref})
}

func (s *MongoUserStore) Create(ctx context.Context, user *User) (*User, error) {
	if user.Email == "" {
		return nil, ErrMissingEmail
	}
	if user.ID == "" {
		user.ID = bson.NewObjectID().Hex()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Roles == nil {
		user.Roles = []string{}
	}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *MongoUserStore) Update(ctx context.Context, user *User) (*User, error) {
	if user.ID == "" {
		return nil, ErrMissingID
	}

	set := bson.M{"updatedAt": time.Now()}
	if user.Email != "" {
		set["email"] = user.Email
	}
	if user.FirstName != "" {
		set["firstName"] = user.FirstName
	}
	if user.LastName != "" {
		set["lastName"] = user.LastName
	}
	if user.Roles != nil {
		set["roles"] = user.Roles
	}
	if user.Verified {
		set["verified"] = true
	}
	if user.Password != "" {
		set["password"] = user.Password
	}
	if user.IamID != "" {
		set["iamId"] = user.IamID
	}

	if _, err := s.coll.UpdateOne(ctx, idFilter(user.ID), bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.FindByID(ctx, user.ID)
}

func (s *MongoUserStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if _, err := s.coll.DeleteOne(ctx, idFilter(id)); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// iamUserDoc decodes an IAM user document with an _id of either representation.
type iamUserDoc struct {
	ID            any       `bson:"_id"`
	Email         string    `bson:"email"`
	Name          string    `bson:"name"`
	EmailVerified bool      `bson:"emailVerified"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func (d *iamUserDoc) toIamUser() *IamUser {
	return &IamUser{
		ID:            stringifyID(d.ID),
		Email:         d.Email,
		Name:          d.Name,
		EmailVerified: d.EmailVerified,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoIamUserStore implements IamUserStore over the IAM user collection.
type MongoIamUserStore struct {
	coll *mongo.Collection
}

func (s *MongoIamUserStore) findOne(ctx context.Context, filter bson.M) (*IamUser, error) {
	var doc iamUserDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find iam user: %w", err)
	}
	return doc.toIamUser(), nil
}

func (s *MongoIamUserStore) FindByID(ctx context.Context, id string) (*IamUser, error) {
	if id == "" {
		return nil, nil
	}
	return s.findOne(ctx, idFilter(id))
}

func (s *MongoIamUserStore) FindByEmail(ctx context.Context, email string) (*IamUser, error) {
	if email == "" {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoIamUserStore) Create(ctx context.Context, user *IamUser) (*IamUser, error) {
	if user.Email == "" {
		return nil, ErrMissingEmail
	}
	if user.ID == "" {
		user.ID = bson.NewObjectID().Hex()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert iam user: %w", err)
	}
	return user, nil
}

func (s *MongoIamUserStore) Update(ctx context.Context, user *IamUser) (*IamUser, error) {
	if user.ID == "" {
		return nil, ErrMissingID
	}

	set := bson.M{"updatedAt": time.Now()}
	if user.Email != "" {
		set["email"] = user.Email
	}
	if user.Name != "" {
		set["name"] = user.Name
	}
	if user.EmailVerified {
		set["emailVerified"] = true
	}

	if _, err := s.coll.UpdateOne(ctx, idFilter(user.ID), bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("update iam user: %w", err)
	}
	return s.FindByID(ctx, user.ID)
}

func (s *MongoIamUserStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if _, err := s.coll.DeleteOne(ctx, idFilter(id)); err != nil {
		return fmt.Errorf("delete iam user: %w", err)
	}
	return nil
}

// accountDoc decodes an account document tolerating both id representations
// in _id and userId.
type accountDoc struct {
	ID         any       `bson:"_id"`
	ProviderID string    `bson:"providerId"`
	UserID     any       `bson:"userId"`
	AccountID  string    `bson:"accountId"`
	Password   string    `bson:"password"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (d *accountDoc) toAccount() *Account {
	return &Account{
		ID:         stringifyID(d.ID),
		ProviderID: d.ProviderID,
		UserID:     stringifyID(d.UserID),
		AccountID:  d.AccountID,
		Password:   d.Password,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoAccountStore implements AccountStore over the IAM account collection.
type MongoAccountStore struct {
	coll *mongo.Collection
}

// userRefFilter matches a userId stored as ObjectID or string.
func userRefFilter(userID string) bson.M {
	if oid, err := bson.ObjectIDFromHex(userID); err == nil {
		return bson.M{"userId": bson.M{"$in": bson.A{oid, userID}}}
	}
	return bson.M{"userId": userID}
}

func (s *MongoAccountStore) FindCredential(ctx context.Context, userID string) (*Account, error) {
	if userID == "" {
		return nil, nil
	}

	filter := userRefFilter(userID)
	filter["providerId"] = ProviderCredential

	var doc accountDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toAccount(), nil
}

func (s *MongoAccountStore) Upsert(ctx context.Context, account *Account) (*Account, error) {
	if account.UserID == "" {
		return nil, ErrMissingID
	}
	if account.ProviderID == "" {
		account.ProviderID = ProviderCredential
	}

	existing, err := s.FindCredential(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		set := bson.M{"updatedAt": now}
		if account.Password != "" {
			set["password"] = account.Password
		}
		if account.AccountID != "" {
			set["accountId"] = account.AccountID
		}
		filter := userRefFilter(account.UserID)
		filter["providerId"] = ProviderCredential
		if _, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
			return nil, fmt.Errorf("update account: %w", err)
		}
		return s.FindCredential(ctx, account.UserID)
	}

	if account.ID == "" {
		account.ID = bson.NewObjectID().Hex()
	}
	if account.AccountID == "" {
		account.AccountID = account.UserID
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, account); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (s *MongoAccountStore) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingID
	}
	if _, err := s.coll.DeleteMany(ctx, userRefFilter(userID)); err != nil {
		return fmt.Errorf("delete accounts: %w", err)
	}
	return nil
}

// sessionDoc decodes a session document tolerating both id representations.
type sessionDoc struct {
	ID        any       `bson:"_id"`
	Token     string    `bson:"token"`
	UserID    any       `bson:"userId"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d *sessionDoc) toSession() *Session {
	return &Session{
		ID:        stringifyID(d.ID),
		Token:     d.Token,
		UserID:    stringifyID(d.UserID),
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

// MongoSessionStore implements SessionStore over the IAM session collection.
type MongoSessionStore struct {
	coll *mongo.Collection
}

func (s *MongoSessionStore) findOne(ctx context.Context, filter bson.M) (*Session, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return doc.toSession(), nil
}

func (s *MongoSessionStore) FindByToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"token": token})
}

func (s *MongoSessionStore) FindActiveByUserID(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, nil
	}
	filter := userRefFilter(userID)
	filter["expiresAt"] = bson.M{"$gt": time.Now()}
	return s.findOne(ctx, filter)
}

func (s *MongoSessionStore) Create(ctx context.Context, session *Session) (*Session, error) {
	if session.Token == "" || session.UserID == "" {
		return nil, ErrMissingID
	}
	if session.ID == "" {
		session.ID = bson.NewObjectID().Hex()
	}
	session.CreatedAt = time.Now()

	if _, err := s.coll.InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (s *MongoSessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *MongoSessionStore) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingID
	}
	if _, err := s.coll.DeleteMany(ctx, userRefFilter(userID)); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// jwkDoc decodes a jwks entry tolerating both id representations.
type jwkDoc struct {
	ID        any       `bson:"_id"`
	Kid       string    `bson:"kid"`
	Alg       string    `bson:"alg"`
	PublicKey string    `bson:"publicKey"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d *jwkDoc) toJWK() JWK {
	return JWK{
		ID:        stringifyID(d.ID),
		Kid:       d.Kid,
		Alg:       d.Alg,
		PublicKey: d.PublicKey,
		CreatedAt: d.CreatedAt,
	}
}

// MongoKeyStore implements KeyStore over the IAM jwks collection.
type MongoKeyStore struct {
	coll *mongo.Collection
}

func (s *MongoKeyStore) FindByKid(ctx context.Context, kid string) (*JWK, error) {
	if kid == "" {
		return nil, nil
	}

	var doc jwkDoc
	err := s.coll.FindOne(ctx, bson.M{"$or": bson.A{bson.M{"kid": kid}, idFilter(kid)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find jwk: %w", err)
	}
	jwk := doc.toJWK()
	return &jwk, nil
}

func (s *MongoKeyStore) All(ctx context.Context) ([]JWK, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list jwks: %w", err)
	}
	defer cur.Close(ctx)

	var keys []JWK
	for cur.Next(ctx) {
		var doc jwkDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode jwk: %w", err)
		}
		keys = append(keys, doc.toJWK())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate jwks: %w", err)
	}
	return keys, nil
}
