package services

import (
	"fmt"

	"github.com/kiakia/loanbot-backend/internal/models"
)

const supportEmail = "helpdesk@kiakia.co"

func welcomeMessage(name string) string {
	greeting := "👋 Welcome to the Kiya Loan Bot!"
	if name != "" {
		greeting = fmt.Sprintf("👋 Welcome to the Kiya Loan Bot, %s!", name)
	}
	return greeting + "\n\n" +
		"I'll walk you through your loan application step by step.\n\n" +
		"Let's get started. What's your email address?"
}

func greetingMessage(name string) string {
	hello := "👋 Hello! Welcome to our Kiya Loan Bot!"
	if name != "" {
		hello = fmt.Sprintf("👋 Hello %s! Welcome to our Kiya Loan Bot!", name)
	}
	return hello + "\n\n" +
		"Type 'start' to begin your application process.\n" +
		"Type 'help' to see available commands."
}

func helpMessage() string {
	return "📖 *Available Commands*\n\n" +
		"• start — begin a new loan application\n" +
		"• status — see your application progress\n" +
		"• restart — start your application over\n" +
		"• cancel — cancel your application\n" +
		"• check payment — check your payment status\n" +
		"• help — show this menu\n\n" +
		"Need assistance? Contact support at " + supportEmail + "."
}

func statusMessage(state models.UserState, filled, total int) string {
	return fmt.Sprintf(
		"📊 *Application Status*\n\n"+
			"Current step: %s\n"+
			"Progress: %d of %d fields completed\n\n"+
			"Type 'help' for available commands.",
		state.Label(), filled, total)
}

func cancellationMessage() string {
	return "🚫 Your application has been cancelled.\n\n" +
		"Type 'start' whenever you'd like to begin again."
}

func otpPromptMessage(email string) string {
	return fmt.Sprintf(
		"✅ Great! I've sent a verification code to %s\n\n"+
			"Please enter the 6-digit OTP you received:", email)
}

func pitchVideoPromptMessage() string {
	return "📹 Final Step: Upload Your Pitch Video\n\n" +
		"Please send your pitch video directly in this chat. Make sure it clearly explains:\n" +
		"• Your business and what you do\n" +
		"• Why you need the loan\n" +
		"• How you plan to use the funds\n\n" +
		"You can send the video now! 🎥"
}

func paymentPromptMessage(link string, data *models.ApplicationData) string {
	msg := "💳 *Application Fee Payment*\n\n"
	if data.FirstName != "" {
		msg += fmt.Sprintf("%s, your application details have been saved.\n\n", data.FirstName)
	}
	msg += "Complete your payment using the link below:\n\n" + link + "\n\n" +
		"✅ You'll receive an automatic confirmation once payment is successful.\n" +
		"You can also reply with your transaction reference once you've paid."
	return msg
}

func paymentWaitingMessage() string {
	return "⏳ Waiting for payment confirmation.\n\n" +
		"Please complete your payment using the link provided earlier.\n\n" +
		"✅ You'll receive an automatic confirmation once payment is successful.\n\n" +
		"Type 'check payment' to see your current payment status.\n" +
		"If you need help, type 'help'."
}

func paymentProcessingMessage() string {
	return "⏳ Your payment is being processed. We'll notify you once it's confirmed.\n\n" +
		"This usually takes a few moments."
}

func paymentConfirmedMessage(reference string, amount float64) string {
	msg := "✅ Payment Confirmed Successfully! 🎉\n\n"
	if amount > 0 {
		msg += fmt.Sprintf("Amount Paid: ₦%.2f\n", amount)
	}
	msg += fmt.Sprintf("Reference: %s\n\n", reference) +
		"Thank you for your payment. Your application is now active.\n\n" +
		pitchVideoPromptMessage()
	return msg
}

func paymentFailedMessage() string {
	return "❌ Payment failed. Please try again or contact support.\n\n" +
		"You can:\n" +
		"• Try the payment link again\n" +
		"• Contact support for assistance at " + supportEmail
}

func completionMessage() string {
	return "✅ Pitch video received! Thank you for your submission.\n\n" +
		"Our team will review your application and get back to you soon.\n\n" +
		"If you need any assistance, feel free to contact support at " + supportEmail + "."
}

func alreadySubmittedMessage() string {
	return "Your application has already been submitted. Our team will contact you soon!\n\n" +
		"Need help? Contact support at " + supportEmail + "."
}

func genericErrorMessage() string {
	return "❌ Could not process your request. Please try again later."
}

func paymentLinkErrorMessage() string {
	return "❌ Could not generate payment link. Please try again later or contact support."
}
