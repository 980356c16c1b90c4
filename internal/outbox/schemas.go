package outbox

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "title": {"type": "string"},
    "activity_type": {"type": "string"},
    "starts_at": {"type": "string", "format": "date-time"},
    "status": {"type": "string"},
    "gem_amount": {"type": "integer"}
  },
  "required": ["activity_id", "title", "activity_type", "starts_at", "status", "gem_amount"],
  "additionalProperties": false
}`

const checkInRecordedSchema = `{
  "type": "object",
  "title": "CheckInRecorded",
  "properties": {
    "checkin_id": {"type": "string"},
    "activity_id": {"type": "string"},
    "user_id": {"type": "string"},
    "checked_at": {"type": "string", "format": "date-time"}
  },
  "required": ["checkin_id", "activity_id", "user_id", "checked_at"],
  "additionalProperties": false
}`

const checkInDecidedSchema = `{
  "type": "object",
  "title": "CheckInDecided",
  "properties": {
    "checkin_id": {"type": "string"},
    "activity_id": {"type": "string"},
    "user_id": {"type": "string"},
    "decision": {"type": "string"},
    "gems_awarded": {"type": "integer"},
    "decided_at": {"type": "string", "format": "date-time"}
  },
  "required": ["checkin_id", "activity_id", "user_id", "decision", "gems_awarded", "decided_at"],
  "additionalProperties": false
}`
