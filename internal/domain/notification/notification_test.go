package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalAcceptsBothReadSpellings(t *testing.T) {
	var list []Notification
	payload := `[
		{"id":1,"title":"Report approved","type":"REPORT_APPROVAL","read":true,"createdAt":"2024-06-01T10:00:00"},
		{"id":2,"title":"Meeting","type":"MEETING_INVITATION","isRead":true},
		{"id":3,"title":"New task","type":"TASK_ASSIGNMENT","read":false,"relatedEntityId":44}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &list))
	require.Len(t, list, 3)

	assert.True(t, list[0].IsRead)
	assert.Equal(t, 2024, list[0].CreatedAt.Year())
	assert.True(t, list[1].IsRead)
	assert.False(t, list[2].IsRead)
	assert.Equal(t, int64(44), list[2].RelatedEntityID)
}

func TestUnreadAndMarkRead(t *testing.T) {
	list := []Notification{{ID: 1}, {ID: 2, IsRead: true}, {ID: 3}}
	assert.Len(t, Unread(list), 2)

	marked := MarkRead(list, 3)
	assert.Len(t, Unread(marked), 1)
	assert.False(t, list[2].IsRead)
}

func TestTypeIcon(t *testing.T) {
	assert.Equal(t, "✅", TypeReportApproval.Icon())
	assert.Equal(t, "🔔", Type("SOMETHING_NEW").Icon())
}
