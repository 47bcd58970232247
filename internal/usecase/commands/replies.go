package commands

const (
	replyNotAuthorized = "⛔ You are not authorized to use this command."

	replyStarted = "✅ Service started."
	replyStopped = "🛑 Service stopped."

	replyStartFirst       = "⚠️ Start the service first with /start."
	replySetChannelsFirst = "⚠️ Set source channels first with /setchannels <channel1> <channel2> ..."

	replySetChannelsUsage = "❌ Usage: /setchannels <channel1> <channel2> ..."
	replyNoKeywords       = "❌ No keywords detected. Use quotes like 'KEY1' or \"KEY1\"."

	replyMonitoringFmt    = "📡 Monitoring: %s"
	replyResolveFailedFmt = "❌ Failed to resolve %s: %v"
	replyKeywordsSetFmt   = "🔍 Keywords set: %s"

	replyCleared = "🧹 Cleared channels and keywords."

	replyShowFmt = "📋 Channels: %s\n🔍 Keywords: %s"
	noneSet      = "None"

	replyStatusRunning = "📡 Status: 🟢 Running"
	replyStatusStopped = "📡 Status: 🔴 Stopped"

	replySaveFailedFmt = "⚠️ Could not save configuration: %v"
)
