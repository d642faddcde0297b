package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

var ErrNoCustodyWallet = errors.New("custody wallet not configured")

// EscrowWallet moves funds out of the platform custody wallet. Deposits flow
// in from clients on the frontend side; releases and refunds are signed and
// submitted here by the server.
type EscrowWallet struct {
	client *SolanaClient
}

func NewEscrowWallet(client *SolanaClient) *EscrowWallet {
	return &EscrowWallet{client: client}
}

// Transfer sends lamports from the custody wallet to the recipient and
// returns the transaction signature.
func (w *EscrowWallet) Transfer(ctx context.Context, recipient string, lamports uint64) (string, error) {
	if w.client == nil || w.client.serverWallet == nil {
		return "", ErrNoCustodyWallet
	}

	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	blockhash, err := w.client.GetRecentBlockhash(ctx)
	if err != nil {
		return "", err
	}

	from := w.client.serverWallet.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, from, to).Build(),
		},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transfer: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from) {
			return &w.client.serverWallet.PrivateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transfer: %w", err)
	}

	sig, err := w.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	log.Printf("Custody transfer sent: %d lamports to %s (%s)", lamports, recipient, sig)
	return sig.String(), nil
}
