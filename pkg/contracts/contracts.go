// Package contracts pins the clip backend's JSON payloads. Tests replay them
// against the real client so a backend schema change fails here first.
package contracts

// FeedContract is the body of GET /videos/type/{category}. The share field is
// the legacy list of sharer ids; newer backends also send shareCount.
const FeedContract = `[
  {
    "_id": "65a1f0c2e4b0a1b2c3d4e5f6",
    "userId": "64ffe0a1b2c3d4e5f6a7b8c9",
    "title": "Golden hour at the pier",
    "desc": "Shot on a phone, no filter",
    "imgUrl": "https://cdn.example.com/thumbs/pier.jpg",
    "videoUrl": "https://cdn.example.com/clips/pier.mp4",
    "views": 1532,
    "tags": ["shorts", "travel"],
    "likes": ["u1", "u2"],
    "dislikes": ["u3"],
    "savedBy": ["u2"],
    "savedByCount": 1,
    "share": ["u4", "u5"],
    "createdAt": "2024-01-15T10:00:00.000Z",
    "updatedAt": "2024-01-16T08:30:00.000Z",
    "__v": 0
  },
  {
    "_id": "65a1f0c2e4b0a1b2c3d4e5f7",
    "userId": "64ffe0a1b2c3d4e5f6a7b8ca",
    "title": "Latte art in 20 seconds",
    "desc": "",
    "imgUrl": "https://cdn.example.com/thumbs/latte.jpg",
    "videoUrl": "https://cdn.example.com/clips/latte.mp4",
    "views": 88,
    "likes": [],
    "dislikes": [],
    "shareCount": 12,
    "createdAt": "2024-02-01T12:00:00.000Z"
  }
]`

// ReactionContract is the body of PUT /users/like/{id} and /users/dislike/{id}
// on backends that return the updated clip.
const ReactionContract = `{
  "_id": "65a1f0c2e4b0a1b2c3d4e5f6",
  "likes": ["u1", "u2", "u9"],
  "dislikes": []
}`

// LikesOnlyReactionContract is a like reply that leaves the dislike list out.
const LikesOnlyReactionContract = `{"_id": "65a1f0c2e4b0a1b2c3d4e5f6", "likes": ["u2", "u1"]}`

// ReactionStatusContract is the plain status string older backends answer with.
const ReactionStatusContract = `"The video has been liked."`

// SaveContract is the body of PUT /users/save/{id}.
const SaveContract = `{"savedByCount": 3}`

// ShareContract and ShareCountContract are the two bodies PUT /users/share/{id} may return.
const (
	ShareContract      = `{"shareCount": 13}`
	ShareCountContract = `13`
)

// ErrorContract is the body of any failed request.
const ErrorContract = `{"success": false, "status": 500, "message": "Something went wrong!"}`
