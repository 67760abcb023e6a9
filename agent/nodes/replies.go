package controllernode

import "fmt"

// Fixed reply copy for the AutoStream lead-capture flow.
const (
	replyWelcome = "Hey! Welcome to **AutoStream**.\n\n" +
		"I can help you with pricing, features, or getting started.\n" +
		"What would you like to know?"

	replyDeflection = "I can help with AutoStream's pricing, plans, or features.\n" +
		"What would you like to learn about?"

	replyFallback = "How can I assist you today?"

	replyAskName = "Awesome! Let's get you set up.\n\nWhat's your **name**?"

	replyEmailRetry = "That doesn't look like a valid email. Please try again (e.g., name@xyz.com)."

	replyAskPlatform = "Which **platform** do you create content on? (YouTube, Instagram, etc.)"

	replyPlanMenu = "Which **plan** are you interested in?\n\n" +
		"📱 **Basic** - $29/month (10 videos/month, 720p)\n" +
		"⭐ **Pro** - $79/month (Unlimited videos, 4K, AI captions)"

	replyPlanRetry = "Please choose either **Basic** or **Pro** plan."
)

func replyAskEmail(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! \n\nWhat's your **email address**?", name)
}

func replyConfirmation(name, email, platform, plan string) string {
	return fmt.Sprintf(
		"All set, %s!\n"+
			"Confirmation sent to %s\n"+
			"Our team will reach out regarding your %s content.\n"+
			"**Selected Plan:** %s",
		name, email, platform, plan,
	)
}
