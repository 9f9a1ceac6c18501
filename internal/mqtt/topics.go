package mqtt

import "fmt"

func TopicUserMoods(prefix string) string {
	return fmt.Sprintf("%s/user/+/mood", prefix)
}

func TopicMood(prefix, userID string) string {
	return fmt.Sprintf("%s/user/%s/mood", prefix, userID)
}
