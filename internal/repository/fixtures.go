package repository

import (
	"time"

	"rumorplaza/internal/models"
)

// fixturePassword is stored verbatim, the way rows predating password hashing were.
const fixturePassword = "1234"

func minutesAgo(now time.Time, m int) time.Time {
	return now.Add(-time.Duration(m) * time.Minute).UTC()
}

// FixturePosts returns the demo posts the local store is seeded with,
// timestamped relative to now.
func FixturePosts(now time.Time) []*models.Post {
	post := func(id string, category models.Category, nickname, title, content string, views, likes, comments, ago int) *models.Post {
		return &models.Post{
			ID:           id,
			Category:     category,
			Nickname:     nickname,
			Password:     fixturePassword,
			Title:        title,
			Content:      content,
			Images:       []string{},
			Views:        views,
			Likes:        likes,
			CommentCount: comments,
			CreatedAt:    minutesAgo(now, ago),
		}
	}
	return []*models.Post{
		post("1", models.CategoryGossip, "entertainment_desk",
			"Is the dating rumor about that hot actor actually true?",
			"Sightings keep popping up. Someone says they saw the two of them together in Hannam-dong yesterday, but the agency still hasn't said a word. What do you all think?\n\nFor the record I only overheard it in passing, but people around me say they know each other.",
			1523, 234, 3, 5),
		post("2", models.CategoryRumor, models.DefaultNickname,
			"Heard our company is planning big layoffs next year...",
			"My team lead let it slip in a meeting today that there might be large-scale restructuring in the first half of next year. Nothing is confirmed yet but the mood is off.\n\nHas anyone else heard something similar?",
			892, 156, 0, 30),
		post("3", models.CategoryAmazing, "what_are_the_odds",
			"A lottery ticket I found on the street won third prize",
			"Something unbelievable happened! On my way to work yesterday there was a lottery ticket lying on the ground, so I picked it up. I checked it today and it's third prize!!\n\nIt's worth a thousand dollars. Do I have to find the owner, or can I keep it?",
			2341, 567, 2, 120),
		post("4", models.CategoryGossip, models.DefaultNickname,
			"Did you hear that idol group is breaking up?",
			"The fandom is in chaos. There's talk of friction between the members. The agency denied it of course, but looking at their recent activity something definitely seems off.",
			3421, 789, 0, 180),
		post("5", models.CategoryRumor, "local_resident",
			"Is our neighborhood really getting redeveloped?",
			"I heard at the real estate office today that our neighborhood might be designated a redevelopment zone. There's no official announcement yet, just a lot of rumors.\n\nHas anyone heard anything similar?",
			567, 45, 0, 240),
		post("6", models.CategoryAmazing, "lucky_one",
			"Ran into my elementary school friend after 20 years",
			"I went abroad on vacation and ran into a friend who transferred away in elementary school! We didn't recognize each other at all until we saw each other's name tags.\n\nI guess this is what they mean by a small world.",
			1234, 321, 0, 360),
		post("7", models.CategoryGossip, "true_fan",
			"Anyone know what that trending actor is really like?",
			"The one who's blowing up in dramas right now. I'm curious what their personality is like in real life. If anyone works on set, please tell us!",
			4521, 892, 0, 60),
		post("8", models.CategoryAmazing, "hard_to_believe",
			"I saw a ghost on my way home from work yesterday",
			"I had a truly chilling experience. I was leaving late after overtime yesterday and a white shadow passed down the office hallway. I thought it was a coworker at first but nobody was there...",
			5678, 1234, 0, 90),
	}
}

// FixtureComments returns the demo comments seeded alongside FixturePosts.
// Each fixture post's comment count matches the comments listed here.
func FixtureComments(now time.Time) []*models.Comment {
	comment := func(id, postID, nickname, content string, ago int) *models.Comment {
		return &models.Comment{
			ID:        id,
			PostID:    postID,
			Nickname:  nickname,
			Content:   content,
			CreatedAt: minutesAgo(now, ago),
		}
	}
	return []*models.Comment{
		comment("c1", "1", "curious", "Oh really? I heard that rumor too!", 3),
		comment("c2", "1", models.DefaultNickname, "Hasn't that rumor been going around for ages though?", 10),
		comment("c3", "1", "passing_by", "I heard something similar, but no idea if it's true", 15),
		comment("c4", "3", "legal_eagle", "Technically lost property should be reported to the police. Realistically though...", 100),
		comment("c5", "3", models.DefaultNickname, "Wow, amazing! Congratulations!", 110),
	}
}
